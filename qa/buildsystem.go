package qa

import "context"

// BuildSystemPlugin detects which packaging helper the source uses
type BuildSystemPlugin struct{}

// Name returns the plugin name
func (p *BuildSystemPlugin) Name() string {
	return "buildsystem"
}

// Run inspects debian/rules and helper config files
func (p *BuildSystemPlugin) Run(_ context.Context, env *Environment, collect *Collector) error {
	source := env.Source

	if !source.HasFile("debian/rules") {
		collect.Record("buildsystem", "Package has no debian/rules", nil, SeverityError)
		return nil
	}

	system := "make"
	switch {
	case source.HasFile("debian/cdbs"), source.HasFile("debian/cdbs-config"):
		system = "cdbs"
	case source.HasFile("debian/compat"), source.HasFile("debian/debhelper-build-stamp"):
		system = "debhelper"
	}

	// debhelper compat may also be declared as a build dependency
	if system == "make" && source.Control != nil {
		for _, dep := range source.Control.Source.BuildDepends {
			if dep == "debhelper" || dep == "debhelper-compat" {
				system = "debhelper"
				break
			}
		}
	}

	collect.Record("buildsystem", "Detected build system",
		map[string]string{"system": system}, SeverityInfo)
	return nil
}
