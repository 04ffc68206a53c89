package qa

import (
	"context"
	"fmt"
)

// ClosesPlugin resolves bug references named in the changelog against the
// bug tracker
type ClosesPlugin struct{}

// Name returns the plugin name
func (p *ClosesPlugin) Name() string {
	return "closes"
}

// Run looks up every closed bug. Tracker failures degrade to a warning,
// the upload does not depend on the tracker being reachable.
func (p *ClosesPlugin) Run(ctx context.Context, env *Environment, collect *Collector) error {
	bugs := env.Changes.Closes
	if len(bugs) == 0 {
		collect.Record("closes", "Upload does not close any bugs", nil, SeverityInfo)
		return nil
	}

	statuses, err := env.Archive.BugStatus(ctx, bugs)
	if err != nil {
		collect.Record("closes", "Unable to query the bug tracker",
			map[string]string{"error": err.Error()}, SeverityWarning)
		return nil
	}

	// one result per bug, distinct test names keep every finding persisted
	for _, bug := range bugs {
		test := fmt.Sprintf("bug-%d", bug)

		status, known := statuses[bug]
		if !known {
			collect.Record(test, fmt.Sprintf("Bug #%d does not exist", bug),
				nil, SeverityWarning)
			continue
		}

		collect.Record(test, fmt.Sprintf("Closes #%d (%s)", bug, status),
			map[string]interface{}{"bug": bug, "status": status}, SeverityInfo)
	}

	return nil
}
