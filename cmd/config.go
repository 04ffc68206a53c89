package cmd

import (
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
	"gopkg.in/yaml.v3"
)

func runConfigShow(cmd *commander.Command, args []string) error {
	if len(args) != 0 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	encoded, err := yaml.Marshal(context.Config())
	if err != nil {
		return fmt.Errorf("unable to show config: %s", err)
	}

	fmt.Print(string(encoded))
	return nil
}

func makeCmdConfig() *commander.Command {
	return &commander.Command{
		UsageLine: "config",
		Short:     "manage configuration",
		Subcommands: []*commander.Command{
			{
				Run:       runConfigShow,
				UsageLine: "show",
				Short:     "display effective configuration",
				Flag:      *flag.NewFlagSet("importer-config-show", flag.ExitOnError),
			},
		},
		Flag: *flag.NewFlagSet("importer-config", flag.ExitOnError),
	}
}
