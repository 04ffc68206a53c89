package cmd

import (
	gocontext "context"
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func runRepoRemove(cmd *commander.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	pkg := args[0]
	version := ""
	if len(args) == 2 {
		version = args[1]
	}

	err := context.Publisher().Remove(pkg, version)
	if err != nil {
		return fmt.Errorf("unable to remove: %s", err)
	}

	err = context.Publisher().Update(gocontext.Background())
	if err != nil {
		return fmt.Errorf("unable to update indices: %s", err)
	}

	fmt.Printf("Package %s removed.\n", pkg)
	return nil
}

func makeCmdRepoRemove() *commander.Command {
	return &commander.Command{
		Run:       runRepoRemove,
		UsageLine: "remove <package> [<version>]",
		Short:     "remove package from the repository",
		Long: `
Removes a package (all versions, or one version) from the repository,
deleting pool files no other package version still references, and
regenerates the affected Sources indices.

Example:

  $ importer repo remove hello 2.10-3
`,
		Flag: *flag.NewFlagSet("importer-repo-remove", flag.ExitOnError),
	}
}
