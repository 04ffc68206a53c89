package qa

import (
	"context"
	"encoding/json"
)

// inDebianTest tags the result the importer mirrors onto the package record
const inDebianTest = "in-debian"

// DebianArchivePlugin checks whether the package already exists in the
// official archive
type DebianArchivePlugin struct{}

// Name returns the plugin name
func (p *DebianArchivePlugin) Name() string {
	return "debianarchive"
}

// Run queries the archive for the uploaded package name at any version
func (p *DebianArchivePlugin) Run(ctx context.Context, env *Environment, collect *Collector) error {
	_, known, err := env.Archive.SourceFiles(ctx, env.Changes.Source, env.Changes.Version.String())
	if err != nil {
		return err
	}

	data := map[string]bool{"in_debian": known}
	if known {
		collect.Record(inDebianTest, "Package version is already in Debian", data, SeverityWarning)
	} else {
		collect.Record(inDebianTest, "Package version is not in Debian", data, SeverityInfo)
	}

	return nil
}

// InDebian extracts the archive-membership signal from a result list, second
// return is false when no debianarchive plugin ran
func InDebian(results []Result) (inDebian bool, found bool) {
	for _, result := range results {
		if result.Plugin != "debianarchive" || result.Test != inDebianTest {
			continue
		}
		var data struct {
			InDebian bool `json:"in_debian"`
		}
		if err := json.Unmarshal([]byte(result.Data), &data); err != nil {
			continue
		}
		found = true
		inDebian = data.InDebian
	}
	return inDebian, found
}
