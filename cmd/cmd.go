// Package cmd implements console commands
package cmd

import (
	"fmt"
	"os"

	"github.com/smira/commander"
	"github.com/smira/flag"

	ctx "github.com/mentors-dev/importer/context"
)

// Version variable, filled in at link time
var Version = "unknown"

// FatalError aborts the command with the given return code
type FatalError struct {
	ReturnCode int
	Message    string
}

var context *ctx.ImporterContext

// Fatal panics with a FatalError, abandoning the command
func Fatal(err error) {
	panic(&FatalError{ReturnCode: 1, Message: err.Error()})
}

// RootCommand creates root command in command tree
func RootCommand() *commander.Command {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "package upload intake service",
		Long: `
importer accepts signed Debian source package uploads, validates and
unpacks them, runs QA checks and admits them into a package repository,
reporting outcomes to the uploader by email.`,
		Flag: *flag.NewFlagSet("importer", flag.ExitOnError),
		Subcommands: []*commander.Command{
			makeCmdConfig(),
			makeCmdImport(),
			makeCmdRepo(),
			makeCmdServe(),
			makeCmdVersion(),
		},
	}

	cmd.Flag.String("config", "", "location of configuration file (default locations are /etc/importer.conf, ~/.importer.conf)")

	return cmd
}

// Run executes a parsed command, turning Fatal panics into return codes
func Run(cmd *commander.Command, cmdArgs []string, initContext bool) (returnCode int) {
	defer func() {
		if r := recover(); r != nil {
			fatal, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			fmt.Println("ERROR:", fatal.Message)
			returnCode = fatal.ReturnCode
		}
	}()

	returnCode = 0

	flags, args, err := cmd.ParseFlags(cmdArgs)
	if err != nil {
		Fatal(err)
	}

	if initContext {
		context, err = ctx.NewContext(flags)
		if err != nil {
			Fatal(err)
		}
		defer context.Shutdown()
	}

	err = cmd.Dispatch(args)
	if err != nil {
		Fatal(err)
	}

	return
}
