package deb

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// SourceStanza is the first paragraph of debian/control
type SourceStanza struct {
	Source       string
	Maintainer   string
	Uploaders    string
	Section      string
	Priority     string
	Homepage     string
	VcsBrowser   string
	VcsGit       string
	BuildDepends []string
}

// BinaryStanza is one binary package paragraph of debian/control
type BinaryStanza struct {
	Package      string
	Architecture string
	Description  string
	Section      string
	Priority     string
	Homepage     string
}

// Control is a parsed debian/control file
type Control struct {
	Source   SourceStanza
	Binaries []BinaryStanza
}

// parseDependencyList splits a comma-separated dependency field into bare
// package names, dropping version constraints and architecture qualifiers
func parseDependencyList(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if idx := strings.IndexAny(item, " (["); idx != -1 {
			item = item[:idx]
		}
		result = append(result, item)
	}

	return result
}

// NewControlFromFile parses debian/control from path
func NewControlFromFile(path string) (*Control, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ControlError{Reason: fmt.Sprintf("unable to read debian/control: %s", err)}
	}
	defer func() { _ = f.Close() }()

	return NewControl(f)
}

// NewControl parses debian/control: first paragraph describes the source
// package, the rest one binary package each
func NewControl(r io.Reader) (*Control, error) {
	stanzas, err := NewControlFileReader(r).ReadAllStanzas()
	if err != nil {
		return nil, &ControlError{Reason: fmt.Sprintf("debian/control: %s", err)}
	}

	if len(stanzas) == 0 {
		return nil, &ControlError{Reason: "debian/control: no source stanza found"}
	}
	if len(stanzas) < 2 {
		return nil, &ControlError{Reason: "debian/control: no binary stanza found"}
	}

	source := stanzas[0]
	for _, field := range []string{"Source", "Maintainer"} {
		if _, ok := source[field]; !ok {
			return nil, &ControlError{Reason: fmt.Sprintf(
				"debian/control: source stanza is missing mandatory field %s", field)}
		}
	}

	result := &Control{
		Source: SourceStanza{
			Source:       source["Source"],
			Maintainer:   source["Maintainer"],
			Uploaders:    source["Uploaders"],
			Section:      source["Section"],
			Priority:     source["Priority"],
			Homepage:     source["Homepage"],
			VcsBrowser:   source["Vcs-Browser"],
			VcsGit:       source["Vcs-Git"],
			BuildDepends: parseDependencyList(source["Build-Depends"]),
		},
	}

	for _, stanza := range stanzas[1:] {
		for _, field := range []string{"Package", "Architecture", "Description"} {
			if _, ok := stanza[field]; !ok {
				return nil, &ControlError{Reason: fmt.Sprintf(
					"debian/control: binary stanza is missing mandatory field %s", field)}
			}
		}

		result.Binaries = append(result.Binaries, BinaryStanza{
			Package:      stanza["Package"],
			Architecture: stanza["Architecture"],
			Description:  stanza["Description"],
			Section:      stanza["Section"],
			Priority:     stanza["Priority"],
			Homepage:     stanza["Homepage"],
		})
	}

	return result, nil
}
