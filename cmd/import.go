package cmd

import (
	gocontext "context"
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/mentors-dev/importer/dlock"
)

// importRunLockName guards against two importer runs racing over the spool
const importRunLockName = "importer-run"

func runImport(cmd *commander.Command, args []string) error {
	if len(args) != 0 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	ctx := gocontext.Background()

	var ok bool
	err := context.Locker().With(ctx, importRunLockName, false, func() error {
		var err error
		ok, err = context.Importer().ProcessSpool(ctx)
		return err
	})

	if err == dlock.ErrLockBusy {
		// periodic job semantics: a running peer means nothing to do
		fmt.Println("Another importer run is in progress, skipping.")
		return nil
	}
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("some uploads were rejected or failed")
	}

	return nil
}

func makeCmdImport() *commander.Command {
	return &commander.Command{
		Run:       runImport,
		UsageLine: "import",
		Short:     "process queued uploads",
		Long: `
Promotes every complete upload from the incoming queue and runs each one
through validation, QA and repository installation. Designed to run as a
periodic job: when another run is already in progress the command exits
immediately without doing anything.

Example:

  $ importer import
`,
		Flag: *flag.NewFlagSet("importer-import", flag.ExitOnError),
	}
}
