package deb

import "strings"

var knownComponents = []string{"main", "contrib", "non-free"}

// ParseSection splits a Section field value into (component, section).
//
// A prefix before "/" is taken as the component only when it is one of the
// archive components; any other prefix is folded into the section name under
// component main.
func ParseSection(value string) (component, section string) {
	component = "main"
	section = value

	if !strings.Contains(value, "/") {
		return
	}

	parts := strings.SplitN(value, "/", 2)
	for _, known := range knownComponents {
		if parts[0] == known {
			return parts[0], parts[1]
		}
	}

	section = strings.Replace(value, "/", "_", -1)
	return
}
