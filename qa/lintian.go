package qa

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/mentors-dev/importer/utils"
)

// LintianPlugin runs lintian over the uploaded .changes and aggregates
// its findings by severity letter
type LintianPlugin struct{}

// Name returns the plugin name
func (p *LintianPlugin) Name() string {
	return "lintian"
}

// severity letter precedence, worst first
var lintianPrecedence = []struct {
	letter   string
	outcome  string
	severity Severity
}{
	{"E", "Lintian reports errors", SeverityError},
	{"W", "Lintian reports warnings", SeverityWarning},
	{"I", "Lintian reports informational tags", SeverityInfo},
	{"O", "Lintian reports overridden tags", SeverityInfo},
	{"P", "Lintian reports pedantic tags", SeverityInfo},
	{"X", "Lintian reports experimental tags", SeverityInfo},
}

// Run invokes lintian and groups tag lines by their severity letter
func (p *LintianPlugin) Run(ctx context.Context, env *Environment, collect *Collector) error {
	output, err := env.Lintian.Run(ctx, env.Config.LintianCommand, "", env.Changes.FullPath())

	switch {
	case err == utils.ErrToolNotFound:
		return err
	case err == utils.ErrToolTimedOut:
		collect.Record("lintian", "Lintian timed out", nil, SeverityWarning)
		return nil
	case err != nil:
		// lintian exits 1 when it found policy violations, 2 on internal failure
		if exitErr, ok := err.(*utils.ExitError); ok && exitErr.Code == 1 {
			output = exitErr.Output
		} else {
			return err
		}
	}

	groups := parseLintianOutput(output)
	if len(groups) == 0 {
		collect.Record("lintian", "Lintian is happy", nil, SeverityInfo)
		return nil
	}

	for _, level := range lintianPrecedence {
		tags, ok := groups[level.letter]
		if !ok {
			continue
		}
		// distinct test name per severity letter, the store keys results by it
		collect.Record("lintian-"+strings.ToLower(level.letter), level.outcome,
			map[string][]string{"tags": tags}, level.severity)
	}

	return nil
}

// parseLintianOutput groups "L: package: tag ..." lines by severity letter L
func parseLintianOutput(output []byte) map[string][]string {
	groups := make(map[string][]string)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 3 || line[1] != ':' {
			continue
		}

		letter := line[:1]
		if !strings.Contains("EWIOPX", letter) {
			continue
		}

		groups[letter] = append(groups[letter], strings.TrimSpace(line[2:]))
	}

	return groups
}
