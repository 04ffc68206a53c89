// Package qa runs quality-assurance plugins over an extracted source package
package qa

import (
	"context"
	"encoding/json"

	"github.com/mentors-dev/importer/archive"
	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/utils"
)

// Severity grades a single plugin finding. Failed marks an internal plugin
// error, not a package defect.
type Severity int

// Severity levels, ordered by weight for reporting
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFailed
)

var severityNames = []string{"info", "warning", "error", "critical", "failed"}

func (s Severity) String() string {
	if s < SeverityInfo || s > SeverityFailed {
		return "unknown"
	}
	return severityNames[s]
}

// Result is one finding produced by a plugin
type Result struct {
	Plugin   string
	Test     string
	Outcome  string
	Data     string
	Severity Severity
}

// Environment carries everything a plugin may inspect: the upload, the
// extracted source tree, external tool runners and the archive client
type Environment struct {
	Changes *deb.Changes
	Source  *deb.Source

	Config  *utils.ConfigStructure
	Lintian *utils.Runner
	Uscan   *utils.Runner
	Archive *archive.Client
}

// Collector accumulates results on behalf of a single plugin run
type Collector struct {
	plugin  string
	results []Result
}

// Record adds a finding. data is serialized to JSON for storage, a nil data
// stores the empty string.
func (c *Collector) Record(test, outcome string, data interface{}, severity Severity) {
	encoded := ""
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			encoded = string(raw)
		}
	}

	c.results = append(c.results, Result{
		Plugin:   c.plugin,
		Test:     test,
		Outcome:  outcome,
		Data:     encoded,
		Severity: severity,
	})
}

// Failed records an internal plugin error as a result tagged with the
// plugin's own name
func (c *Collector) Failed(message string) {
	c.results = append(c.results, Result{
		Plugin:   c.plugin,
		Test:     c.plugin,
		Outcome:  message,
		Severity: SeverityFailed,
	})
}

// Plugin is a single independent QA check
type Plugin interface {
	// Name identifies the plugin in configuration and stored results
	Name() string
	// Run inspects the environment and records findings; a returned error
	// signals an internal plugin failure
	Run(ctx context.Context, env *Environment, collect *Collector) error
}
