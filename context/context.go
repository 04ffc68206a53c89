// Package context wires configuration into the services the commands share
package context

import (
	"os"

	"github.com/pkg/errors"
	"github.com/smira/flag"

	"github.com/mentors-dev/importer/archive"
	"github.com/mentors-dev/importer/database"
	"github.com/mentors-dev/importer/database/goleveldb"
	"github.com/mentors-dev/importer/dlock"
	"github.com/mentors-dev/importer/history"
	"github.com/mentors-dev/importer/importer"
	"github.com/mentors-dev/importer/mail"
	"github.com/mentors-dev/importer/pgp"
	"github.com/mentors-dev/importer/repo"
	"github.com/mentors-dev/importer/spool"
	"github.com/mentors-dev/importer/store"
	"github.com/mentors-dev/importer/utils"
)

// ImporterContext is the shared per-process state behind every command
type ImporterContext struct {
	flags  *flag.FlagSet
	config *utils.ConfigStructure

	db          database.Storage
	collections *store.Collections
	verifier    pgp.Verifier
	locker      dlock.Locker
	spool       *spool.Spool
	archive     *archive.Client
	publisher   *repo.Publisher
	history     history.Store
	notifier    mail.Notifier
	importer    *importer.Importer
}

// NewContext loads configuration and builds every service
func NewContext(flags *flag.FlagSet) (*ImporterContext, error) {
	config, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	if config.LogFormat == "json" {
		utils.SetupJSONLogger(config.LogLevel, os.Stdout)
	} else {
		utils.SetupDefaultLogger(config.LogLevel)
	}

	db, err := goleveldb.NewOpenDB(config.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open database")
	}

	collections := store.NewCollections(db)

	var verifier pgp.Verifier
	if config.GpgSkipVerify {
		verifier = &pgp.NullVerifier{}
	} else {
		verifier = &pgp.GoVerifier{}
		for _, keyring := range config.GpgKeyrings {
			verifier.AddKeyring(keyring)
		}
	}
	if err = verifier.InitKeyring(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to initialize keyring")
	}

	var locker dlock.Locker
	if len(config.EtcdEndpoints) > 0 {
		locker, err = dlock.NewEtcd(config.EtcdEndpoints, config.LockTTL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	} else {
		locker = dlock.NewLocal()
	}

	uploadSpool, err := spool.New(config.SpoolDir, verifier, config.GpgSkipVerify)
	if err != nil {
		_ = db.Close()
		_ = locker.Close()
		return nil, errors.Wrap(err, "unable to set up spool")
	}

	archiveClient := archive.NewClient(config.ArchiveAPIURL,
		config.MaxDownloadSize, config.ArchiveRateLimit)

	publisher := repo.NewPublisher(config.RepoDir, collections, locker, verifier)

	var historyStore history.Store = history.NullStore{}
	if config.GitStoragePath != "" {
		historyStore = history.NewGitStore(config.GitStoragePath,
			utils.NewRunner(config.ExternalTimeout))
	}

	var notifier mail.Notifier = mail.NullNotifier{}
	if !config.SkipEmail && config.SMTPServer != "" {
		notifier = mail.NewSMTPNotifier(config.SMTPServer, config.MailFrom, config.AdminEmail)
	}

	ctx := &ImporterContext{
		flags:       flags,
		config:      config,
		db:          db,
		collections: collections,
		verifier:    verifier,
		locker:      locker,
		spool:       uploadSpool,
		archive:     archiveClient,
		publisher:   publisher,
		history:     historyStore,
		notifier:    notifier,
	}

	ctx.importer = importer.New(config, collections, verifier, uploadSpool,
		publisher, archiveClient, historyStore, notifier)

	return ctx, nil
}

func loadConfig(flags *flag.FlagSet) (*utils.ConfigStructure, error) {
	config := utils.NewConfig()

	location := flags.Lookup("config").Value.String()
	if location != "" {
		if err := utils.LoadConfig(location, config); err != nil {
			return nil, err
		}
		return config, nil
	}

	for _, candidate := range []string{"/etc/importer.conf", os.ExpandEnv("$HOME/.importer.conf")} {
		err := utils.LoadConfig(candidate, config)
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
	}

	// no config file found, defaults apply
	return config, nil
}

// Config returns the loaded configuration
func (ctx *ImporterContext) Config() *utils.ConfigStructure {
	return ctx.config
}

// Collections returns the record collections
func (ctx *ImporterContext) Collections() *store.Collections {
	return ctx.collections
}

// Spool returns the upload queue manager
func (ctx *ImporterContext) Spool() *spool.Spool {
	return ctx.spool
}

// Publisher returns the repository publisher
func (ctx *ImporterContext) Publisher() *repo.Publisher {
	return ctx.publisher
}

// Locker returns the cross-process lock service
func (ctx *ImporterContext) Locker() dlock.Locker {
	return ctx.locker
}

// Importer returns the upload pipeline
func (ctx *ImporterContext) Importer() *importer.Importer {
	return ctx.importer
}

// Shutdown releases the database and the lock service
func (ctx *ImporterContext) Shutdown() {
	if ctx.locker != nil {
		_ = ctx.locker.Close()
	}
	if ctx.db != nil {
		_ = ctx.db.Close()
	}
}
