package qa

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// registry maps configured plugin names to constructors
var registry = map[string]func() Plugin{
	"buildsystem":   func() Plugin { return &BuildSystemPlugin{} },
	"closes":        func() Plugin { return &ClosesPlugin{} },
	"debianarchive": func() Plugin { return &DebianArchivePlugin{} },
	"distribution":  func() Plugin { return &DistributionPlugin{} },
	"lintian":       func() Plugin { return &LintianPlugin{} },
	"native":        func() Plugin { return &NativePlugin{} },
	"rfstemplate":   func() Plugin { return &RFSTemplatePlugin{} },
	"watchfile":     func() Plugin { return &WatchFilePlugin{} },
}

// Engine runs a fixed, ordered list of plugins with per-plugin isolation
type Engine struct {
	plugins []Plugin
}

// NewEngine instantiates plugins in the configured order. Unknown names are
// logged and skipped, they never abort the pipeline.
func NewEngine(names []string) *Engine {
	engine := &Engine{}

	for _, name := range names {
		construct, ok := registry[name]
		if !ok {
			log.Warn().Str("plugin", name).Msg("unknown QA plugin, skipping")
			continue
		}
		engine.plugins = append(engine.plugins, construct())
	}

	return engine
}

// Run executes every plugin over the upload. One plugin's panic or error is
// recorded as a failed result and never prevents the others from running.
func (e *Engine) Run(ctx context.Context, env *Environment) []Result {
	var results []Result

	for _, plugin := range e.plugins {
		collect := &Collector{plugin: plugin.Name()}

		err := runIsolated(ctx, plugin, env, collect)
		if err != nil {
			log.Warn().Err(err).Str("plugin", plugin.Name()).Msg("QA plugin failed")
			collect.Failed(err.Error())
		}

		results = append(results, collect.results...)
	}

	return results
}

func runIsolated(ctx context.Context, plugin Plugin, env *Environment, collect *Collector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panic: %v", r)
		}
	}()

	return plugin.Run(ctx, env, collect)
}
