package deb

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Copyright is a parsed debian/copyright file
type Copyright struct {
	// MachineReadable is true when the file follows the copyright-format 1.0 spec
	MachineReadable bool
	UpstreamName    string
	UpstreamContact string
	// Licenses is the set of distinct license synopses covering upstream files
	Licenses []string
}

// NewCopyrightFromFile parses debian/copyright from path
func NewCopyrightFromFile(path string) (*Copyright, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &CopyrightError{Reason: fmt.Sprintf("unable to read debian/copyright: %s", err)}
	}
	defer func() { _ = f.Close() }()

	return NewCopyright(f)
}

// NewCopyright parses debian/copyright. Free-form files are accepted with
// licensing treated as unknown; only malformed machine-readable syntax is an error.
func NewCopyright(r io.Reader) (*Copyright, error) {
	reader := NewControlFileReader(r)

	header, err := reader.ReadStanza()
	if err != nil || header == nil {
		// not a deb822 document at all: legacy free-form copyright
		return &Copyright{}, nil
	}

	format, ok := header["Format"]
	if !ok {
		format, ok = header["Format-Specification"]
	}
	if !ok || !strings.Contains(format, "copyright-format") && !strings.Contains(format, "dep5") {
		return &Copyright{}, nil
	}

	result := &Copyright{
		MachineReadable: true,
		UpstreamName:    header["Upstream-Name"],
		UpstreamContact: header["Upstream-Contact"],
	}

	stanzas, err := reader.ReadAllStanzas()
	if err != nil {
		return nil, &CopyrightError{Reason: fmt.Sprintf("debian/copyright: %s", err)}
	}

	seen := map[string]struct{}{}

	for _, stanza := range stanzas {
		files, isFiles := stanza["Files"]
		if !isFiles {
			// standalone License paragraphs only expand synopses already collected
			continue
		}

		license, ok := stanza["License"]
		if !ok {
			return nil, &CopyrightError{Reason: fmt.Sprintf(
				"debian/copyright: paragraph for %s has no License field", strings.TrimSpace(files))}
		}

		// the debian/* paragraph covers packaging itself, not upstream
		if strings.TrimSpace(files) == "debian/*" {
			continue
		}

		synopsis := license
		if idx := strings.Index(license, "\n"); idx != -1 {
			synopsis = license[:idx]
		}
		synopsis = strings.TrimSpace(synopsis)
		if synopsis == "" {
			continue
		}

		if _, dup := seen[synopsis]; !dup {
			seen[synopsis] = struct{}{}
			result.Licenses = append(result.Licenses, synopsis)
		}
	}

	return result, nil
}
