package qa

import "context"

// NativePlugin flags native packages: a version without a Debian revision
// usually means a non-native package was packaged incorrectly
type NativePlugin struct{}

// Name returns the plugin name
func (p *NativePlugin) Name() string {
	return "native"
}

// Run reports whether the package is native, along with the detected source format
func (p *NativePlugin) Run(_ context.Context, env *Environment, collect *Collector) error {
	format := env.Source.Format()
	data := map[string]string{"format": format}

	if env.Changes.Version.IsNative() {
		collect.Record("native", "Package is native", data, SeverityWarning)
	} else {
		collect.Record("native", "Package is not native", data, SeverityInfo)
	}

	return nil
}
