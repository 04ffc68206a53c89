package qa

import (
	"context"
	"strings"

	"github.com/mentors-dev/importer/utils"
)

// WatchFilePlugin runs the upstream version check over debian/watch
type WatchFilePlugin struct{}

// Name returns the plugin name
func (p *WatchFilePlugin) Name() string {
	return "watchfile"
}

// Run invokes uscan against the extracted source tree
func (p *WatchFilePlugin) Run(ctx context.Context, env *Environment, collect *Collector) error {
	if !env.Source.HasFile("debian/watch") {
		collect.Record("watchfile", "Package has no debian/watch", nil, SeverityWarning)
		return nil
	}

	output, err := env.Uscan.Run(ctx, env.Config.UscanCommand, env.Source.ExtractDir,
		"--safe", "--report-status", "--dehs")

	switch {
	case err == utils.ErrToolNotFound:
		collect.Record("watchfile", "Upstream check tool is not installed", nil, SeverityWarning)
		return nil
	case err == utils.ErrToolTimedOut:
		collect.Record("watchfile", "Upstream check timed out", nil, SeverityWarning)
		return nil
	case err != nil:
		// uscan exits non-zero on broken watch files too
		collect.Record("watchfile", "debian/watch could not be processed",
			map[string]string{"output": firstLines(string(output), 10)}, SeverityWarning)
		return nil
	}

	if strings.Contains(string(output), "<status>up to date</status>") {
		collect.Record("watchfile", "Package is the latest upstream version", nil, SeverityInfo)
	} else {
		collect.Record("watchfile", "A newer upstream version is available",
			map[string]string{"output": firstLines(string(output), 10)}, SeverityWarning)
	}

	return nil
}

func firstLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
