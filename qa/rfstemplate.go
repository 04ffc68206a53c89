package qa

import (
	"context"
	"strings"
)

// RFSTemplatePlugin gathers the licensing summary used in sponsorship
// request templates from debian/copyright
type RFSTemplatePlugin struct{}

// Name returns the plugin name
func (p *RFSTemplatePlugin) Name() string {
	return "rfstemplate"
}

// Run grades the machine-readability of debian/copyright and aggregates
// the license synopses it declares
func (p *RFSTemplatePlugin) Run(_ context.Context, env *Environment, collect *Collector) error {
	copyright := env.Source.Copyright

	if copyright == nil || !copyright.MachineReadable {
		collect.Record("rfstemplate",
			"debian/copyright is not machine-readable", nil, SeverityError)
		return nil
	}

	licenses := strings.Join(copyright.Licenses, ", ")
	data := map[string]string{
		"licenses": licenses,
		"upstream": copyright.UpstreamName,
	}

	if copyright.UpstreamContact == "" {
		collect.Record("rfstemplate",
			"debian/copyright does not name an upstream contact", data, SeverityWarning)
		return nil
	}

	collect.Record("rfstemplate", "Licensing summary: "+licenses, data, SeverityInfo)
	return nil
}
