package cmd

import (
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func makeCmdRepo() *commander.Command {
	return &commander.Command{
		UsageLine: "repo",
		Short:     "manage the package repository",
		Subcommands: []*commander.Command{
			makeCmdRepoRemove(),
			makeCmdRepoUpdate(),
		},
		Flag: *flag.NewFlagSet("importer-repo", flag.ExitOnError),
	}
}
