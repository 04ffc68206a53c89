// Package importer drives an upload through validation, QA, acceptance and
// publication
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/archive"
	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/history"
	"github.com/mentors-dev/importer/mail"
	"github.com/mentors-dev/importer/pgp"
	"github.com/mentors-dev/importer/qa"
	"github.com/mentors-dev/importer/repo"
	"github.com/mentors-dev/importer/spool"
	"github.com/mentors-dev/importer/store"
	"github.com/mentors-dev/importer/utils"
)

// State of the upload state machine
type State int

// Upload states, in pipeline order. Accepted, Rejected and Failed are
// terminal: Rejected means the package is at fault, Failed means we are.
const (
	StateReceived State = iota
	StateChangesValidated
	StateDscValidated
	StateSourceValidated
	StateAccepted
	StateRejected
	StateFailed
)

var stateNames = []string{
	"received", "changes-validated", "dsc-validated", "source-validated",
	"accepted", "rejected", "failed",
}

func (s State) String() string {
	if s < StateReceived || s > StateFailed {
		return "unknown"
	}
	return stateNames[s]
}

// Importer coordinates the whole intake pipeline
type Importer struct {
	config      *utils.ConfigStructure
	collections *store.Collections
	verifier    pgp.Verifier
	spool       *spool.Spool
	publisher   *repo.Publisher
	engine      *qa.Engine
	archive     *archive.Client
	history     history.Store
	notifier    mail.Notifier

	extractRunner *utils.Runner
	lintianRunner *utils.Runner
}

// New wires an importer together
func New(config *utils.ConfigStructure, collections *store.Collections,
	verifier pgp.Verifier, uploadSpool *spool.Spool, publisher *repo.Publisher,
	archiveClient *archive.Client, historyStore history.Store, notifier mail.Notifier) *Importer {

	return &Importer{
		config:        config,
		collections:   collections,
		verifier:      verifier,
		spool:         uploadSpool,
		publisher:     publisher,
		engine:        qa.NewEngine(config.Plugins),
		archive:       archiveClient,
		history:       historyStore,
		notifier:      notifier,
		extractRunner: utils.NewRunner(config.ExternalTimeout),
		lintianRunner: utils.NewRunner(config.LintianTimeout),
	}
}

// ProcessSpool promotes the incoming queue and imports every upload in the
// batch. One upload's rejection or failure never stops the rest, and the
// repository index is regenerated once at the end, not per upload.
func (i *Importer) ProcessSpool(ctx context.Context) (ok bool, err error) {
	batch, err := i.spool.ChangesToProcess()
	if err != nil {
		return false, err
	}

	ok = true
	for _, changes := range batch {
		state := i.ProcessUpload(ctx, changes)
		if state != StateAccepted {
			ok = false
		}
	}

	if err = i.publisher.Update(ctx); err != nil {
		return false, err
	}

	return ok, nil
}

// ProcessUpload runs one upload through the state machine. The .changes and
// everything it owns leave the spool exactly once, whatever the outcome.
func (i *Importer) ProcessUpload(ctx context.Context, changes *deb.Changes) State {
	started := time.Now()
	logger := log.With().Str("changes", changes.ChangesName).Logger()

	var source *deb.Source
	defer func() {
		if source != nil {
			if err := source.Remove(); err != nil {
				logger.Warn().Err(err).Msg("unable to remove extracted source")
			}
		}
		if err := changes.Cleanup(); err != nil {
			logger.Warn().Err(err).Msg("unable to clean up spool files")
		}
	}()

	state, err := i.runPipeline(ctx, changes, &source)

	uploader := i.resolveUploader(changes)

	switch {
	case err == nil:
		logger.Info().Str("version", changes.Version.String()).Msg("upload accepted")
		if nerr := i.notifier.Accepted(changes, uploader); nerr != nil {
			logger.Warn().Err(nerr).Msg("unable to notify uploader")
		}

	case deb.IsValidationError(err):
		state = StateRejected
		logger.Info().Err(err).Str("state", state.String()).Msg("upload rejected")
		if nerr := i.notifier.Rejected(changes.ChangesName, uploader, err.Error()); nerr != nil {
			logger.Warn().Err(nerr).Msg("unable to notify uploader")
		}

	default:
		lastState := state
		state = StateFailed
		logger.Error().Err(err).Str("state", lastState.String()).Msg("upload processing failed")
		diagnostic := fmt.Sprintf("error: %s\nlast state reached: %s", err, lastState)
		if nerr := i.notifier.Failed(changes.ChangesName, uploader, diagnostic); nerr != nil {
			logger.Warn().Err(nerr).Msg("unable to notify administrators")
		}
	}

	observeUpload(state, time.Since(started))
	return state
}

// runPipeline executes the ordered validation stages, each gating the next
func (i *Importer) runPipeline(ctx context.Context, changes *deb.Changes, source **deb.Source) (State, error) {
	state := StateReceived

	// Received -> ChangesValidated
	if err := changes.Validate(); err != nil {
		return state, err
	}
	state = StateChangesValidated

	// ChangesValidated -> DscValidated
	dsc, origin, err := i.validateDsc(ctx, changes)
	if err != nil {
		return state, err
	}
	state = StateDscValidated

	// DscValidated -> SourceValidated
	src, err := i.validateSource(ctx, changes, dsc, origin)
	if err != nil {
		return state, err
	}
	*source = src
	state = StateSourceValidated

	// SourceValidated -> Accepted
	if err = i.accept(ctx, changes, dsc, origin, src); err != nil {
		return state, err
	}

	return StateAccepted, nil
}

// validateDsc parses the .dsc, checks its file checksums and reconciles
// origin tarballs with the archive
func (i *Importer) validateDsc(ctx context.Context, changes *deb.Changes) (*deb.Dsc, *archive.Origin, error) {
	dscEntry := changes.DscFile()
	if dscEntry == nil {
		return nil, nil, &deb.ChangesError{Reason: "upload does not include a .dsc file"}
	}

	dsc, err := deb.NewDsc(filepath.Join(changes.BasePath, dscEntry.Filename), i.verifier)
	if err != nil {
		return nil, nil, err
	}

	origin := archive.NewOrigin(i.archive, dsc.Source, dsc.Version.String(),
		changes.Component(), changes.BasePath, i.publisher.PoolDir())

	if err = dsc.Validate(origin); err != nil {
		return nil, nil, err
	}

	// materialize origin tarballs the upload itself did not carry; any
	// tarball the fetch brought in sits next to the upload now, cleanup
	// has to remove it with the rest even if a later fetch failed
	err = origin.Fetch(ctx, dsc.OrigFiles())
	changes.TakeOwnership(dsc.OrigFiles())
	if err != nil {
		return nil, nil, err
	}

	return dsc, origin, nil
}

// validateSource extracts the package and validates its control documents
// and target distribution
func (i *Importer) validateSource(ctx context.Context, changes *deb.Changes, dsc *deb.Dsc, _ *archive.Origin) (*deb.Source, error) {
	source, err := deb.NewSource(dsc.FullPath(), i.extractRunner, i.config.DpkgSourceCommand)
	if err != nil {
		return nil, err
	}

	if err = source.Extract(ctx); err != nil {
		_ = source.Remove()
		return nil, err
	}

	if err = source.ParseControlFiles(); err != nil {
		_ = source.Remove()
		return nil, err
	}

	if !utils.StrSliceHasItem(i.config.Distributions, changes.Distribution) {
		_ = source.Remove()
		return nil, &deb.ChangesError{Reason: fmt.Sprintf(
			"unknown target distribution %s", changes.Distribution)}
	}

	return source, nil
}

// accept runs QA, archives the snapshot, installs files into the pool and
// persists every record of the upload as one transaction
func (i *Importer) accept(ctx context.Context, changes *deb.Changes, dsc *deb.Dsc, origin *archive.Origin, source *deb.Source) error {
	results := i.engine.Run(ctx, &qa.Environment{
		Changes: changes,
		Source:  source,
		Config:  i.config,
		Lintian: i.lintianRunner,
		Uscan:   i.extractRunner,
		Archive: i.archive,
	})

	gitRef, err := i.history.Commit(ctx, changes, source)
	if err != nil {
		return err
	}

	tx, err := i.collections.Database().OpenTransaction()
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err = i.publisher.Install(tx, changes, dsc); err != nil {
		return err
	}

	if err = i.persistRecords(tx, changes, dsc, source, results, gitRef); err != nil {
		return err
	}

	return tx.Commit()
}
