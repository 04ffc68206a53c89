package qa

import (
	"context"
	"strings"

	"github.com/mentors-dev/importer/utils"
)

// DistributionPlugin sanity-checks the target distribution against the
// changelog entry
type DistributionPlugin struct{}

// Name returns the plugin name
func (p *DistributionPlugin) Name() string {
	return "distribution"
}

// Run compares the upload's target distribution with the changelog's
func (p *DistributionPlugin) Run(_ context.Context, env *Environment, collect *Collector) error {
	target := env.Changes.Distribution
	entry := env.Source.Changelog

	if strings.EqualFold(target, "UNRELEASED") {
		collect.Record("distribution", "Upload targets UNRELEASED", nil, SeverityWarning)
		return nil
	}

	if entry != nil && len(entry.Distributions) > 0 && !utils.StrSliceHasItem(entry.Distributions, target) {
		collect.Record("distribution",
			"Changelog distribution does not match upload target",
			map[string]interface{}{"changelog": entry.Distributions, "upload": target},
			SeverityWarning)
		return nil
	}

	collect.Record("distribution", "Distribution is consistent",
		map[string]string{"distribution": target}, SeverityInfo)
	return nil
}
