package deb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mentors-dev/importer/utils"
)

// FileEntry is a single file referenced by a control document together with
// its declared size and digests
type FileEntry struct {
	Filename  string
	Checksums utils.ChecksumInfo
	Component string
	Section   string
	Priority  string
}

// FileEntries is a collection of file references
type FileEntries []FileEntry

// parseSumField processes one *sum* multiline field (Files, Checksums-Sha1, ...),
// updating the set of file entries
func (files FileEntries) parseSumField(input string, setter func(sum *utils.ChecksumInfo, data string), withSection bool) (FileEntries, error) {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("unparseable file entry %#v", line)
		}

		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse file size %#v: %s", fields[1], err)
		}

		filename := filepath.Base(fields[len(fields)-1])

		found := false
		pos := 0
		for i, file := range files {
			if file.Filename == filename {
				found = true
				pos = i
				break
			}
		}

		if !found {
			files = append(files, FileEntry{Filename: filename})
			pos = len(files) - 1
		}

		files[pos].Checksums.Size = size
		setter(&files[pos].Checksums, fields[0])

		if withSection && len(fields) == 5 {
			files[pos].Component, files[pos].Section = ParseSection(fields[2])
			files[pos].Priority = fields[3]
		}
	}

	return files, nil
}

// ParseSumFields populates file entries from Files and Checksums-* stanza fields
func (files FileEntries) ParseSumFields(stanza Stanza) (FileEntries, error) {
	var err error

	result := files

	if field, ok := stanza["Files"]; ok {
		result, err = result.parseSumField(field, func(sum *utils.ChecksumInfo, data string) { sum.MD5 = data }, true)
		if err != nil {
			return nil, err
		}
	}

	if field, ok := stanza["Checksums-Sha1"]; ok {
		result, err = result.parseSumField(field, func(sum *utils.ChecksumInfo, data string) { sum.SHA1 = data }, false)
		if err != nil {
			return nil, err
		}
	}

	if field, ok := stanza["Checksums-Sha256"]; ok {
		result, err = result.parseSumField(field, func(sum *utils.ChecksumInfo, data string) { sum.SHA256 = data }, false)
		if err != nil {
			return nil, err
		}
	}

	if field, ok := stanza["Checksums-Sha512"]; ok {
		result, err = result.parseSumField(field, func(sum *utils.ChecksumInfo, data string) { sum.SHA512 = data }, false)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Validate recomputes digests of the physical file and compares them with the
// declared values. Safe to call repeatedly.
func (f *FileEntry) Validate(basePath string) error {
	path := filepath.Join(basePath, f.Filename)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &ChecksumError{File: f.Filename, Reason: "missing from upload"}
		}
		return err
	}

	actual, err := utils.ChecksumsForFile(path)
	if err != nil {
		return err
	}

	if actual.Size != f.Checksums.Size {
		return &ChecksumError{File: f.Filename,
			Reason: fmt.Sprintf("size mismatch %d != %d", actual.Size, f.Checksums.Size)}
	}

	if f.Checksums.SHA256 != "" && actual.SHA256 != f.Checksums.SHA256 {
		return &ChecksumError{File: f.Filename,
			Reason: fmt.Sprintf("sha256 mismatch %s != %s", actual.SHA256, f.Checksums.SHA256)}
	}

	if f.Checksums.SHA1 != "" && actual.SHA1 != f.Checksums.SHA1 {
		return &ChecksumError{File: f.Filename,
			Reason: fmt.Sprintf("sha1 mismatch %s != %s", actual.SHA1, f.Checksums.SHA1)}
	}

	if f.Checksums.SHA512 != "" && actual.SHA512 != f.Checksums.SHA512 {
		return &ChecksumError{File: f.Filename,
			Reason: fmt.Sprintf("sha512 mismatch %s != %s", actual.SHA512, f.Checksums.SHA512)}
	}

	return nil
}

// IsOrig is true for upstream original tarballs
func (f *FileEntry) IsOrig() bool {
	return strings.Contains(f.Filename, ".orig.tar.")
}
