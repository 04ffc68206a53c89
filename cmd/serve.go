package cmd

import (
	gocontext "context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/mentors-dev/importer/api"
	"github.com/mentors-dev/importer/dlock"
)

func runServe(cmd *commander.Command, args []string) error {
	if len(args) != 0 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	listen := cmd.Flag.Lookup("listen").Value.String()
	if listen == "" {
		listen = context.Config().ListenAddr
	}

	interval := cmd.Flag.Lookup("import-interval").Value.Get().(time.Duration)
	if interval > 0 {
		go importLoop(interval)
	}

	router := api.Router(context.Config(), context.Spool(), context.Collections())

	fmt.Printf("Listening on %s...\n", listen)
	return http.ListenAndServe(listen, router)
}

// importLoop runs the spool processor periodically, skipping ticks while
// another process holds the run lock
func importLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx := gocontext.Background()

		err := context.Locker().With(ctx, importRunLockName, false, func() error {
			_, err := context.Importer().ProcessSpool(ctx)
			return err
		})

		if err == dlock.ErrLockBusy {
			log.Debug().Msg("import already running elsewhere, skipping tick")
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("periodic import failed")
		}
	}
}

func makeCmdServe() *commander.Command {
	cmd := &commander.Command{
		Run:       runServe,
		UsageLine: "serve",
		Short:     "start upload API server",
		Long: `
Starts the HTTP server accepting uploads into the incoming queue and
serving queue and package information. With -import-interval the server
also processes the spool periodically.

Example:

  $ importer serve -listen=:8080 -import-interval=5m
`,
		Flag: *flag.NewFlagSet("importer-serve", flag.ExitOnError),
	}

	cmd.Flag.String("listen", "", "host:port to listen on (defaults to configuration)")
	cmd.Flag.Duration("import-interval", 0, "interval between spool processing runs (0 disables)")

	return cmd
}
