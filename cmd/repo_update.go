package cmd

import (
	gocontext "context"
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func runRepoUpdate(cmd *commander.Command, args []string) error {
	if len(args) != 0 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	err := context.Publisher().UpdateAll(gocontext.Background())
	if err != nil {
		return fmt.Errorf("unable to update indices: %s", err)
	}

	fmt.Println("Sources indices regenerated.")
	return nil
}

func makeCmdRepoUpdate() *commander.Command {
	return &commander.Command{
		Run:       runRepoUpdate,
		UsageLine: "update",
		Short:     "regenerate all Sources indices",
		Long: `
Rebuilds the Sources index of every distribution and component from the
repository records. The indices are derived state, this command restores
them after manual pool surgery or corruption.

Example:

  $ importer repo update
`,
		Flag: *flag.NewFlagSet("importer-repo-update", flag.ExitOnError),
	}
}
