package cmd

import (
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func runVersion(cmd *commander.Command, args []string) error {
	fmt.Printf("importer version: %s\n", Version)
	return nil
}

func makeCmdVersion() *commander.Command {
	return &commander.Command{
		Run:       runVersion,
		UsageLine: "version",
		Short:     "display version",
		Long: `
Shows importer version.

Example:

  $ importer version
`,
		Flag: *flag.NewFlagSet("importer-version", flag.ExitOnError),
	}
}
