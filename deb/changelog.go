package deb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	changelogHeaderRegexp  = regexp.MustCompile(`^(\S+) \(([^)]+)\) ([^;]+);(.*)$`)
	changelogTrailerRegexp = regexp.MustCompile(`^ -- (.+ <.+>)  (.+)$`)
	changelogClosesRegexp  = regexp.MustCompile(`(?i)closes:\s*(?:bug)?#?\s?\d+(?:,\s*(?:bug)?#?\s?\d+)*`)
	changelogBugRegexp     = regexp.MustCompile(`\d+`)
)

// ChangelogEntry is the latest entry of debian/changelog
type ChangelogEntry struct {
	Source        string
	Version       Version
	Distributions []string
	Urgency       string
	Text          string
	Closes        []int
	Author        string
	Date          string
}

// NewChangelogFromFile parses the latest entry of debian/changelog from path
func NewChangelogFromFile(path string) (*ChangelogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ChangelogError{Reason: fmt.Sprintf("unable to read debian/changelog: %s", err)}
	}
	defer func() { _ = f.Close() }()

	return NewChangelog(f)
}

// NewChangelog parses the first (latest) changelog entry
func NewChangelog(r io.Reader) (*ChangelogEntry, error) {
	scanner := bufio.NewScanner(bufio.NewReaderSize(r, 32768))
	scanner.Buffer(nil, MaxFieldSize)

	result := &ChangelogEntry{}
	headerSeen := false
	var body []string

	for scanner.Scan() {
		line := scanner.Text()

		if !headerSeen {
			if strings.TrimSpace(line) == "" {
				continue
			}

			m := changelogHeaderRegexp.FindStringSubmatch(line)
			if m == nil {
				return nil, &ChangelogError{Reason: fmt.Sprintf(
					"debian/changelog: malformed entry header %#v", line)}
			}

			result.Source = m[1]
			result.Version = ParseVersion(m[2])
			result.Distributions = strings.Fields(m[3])
			for _, option := range strings.Split(m[4], ",") {
				option = strings.TrimSpace(option)
				if strings.HasPrefix(option, "urgency=") {
					result.Urgency = strings.TrimPrefix(option, "urgency=")
				}
			}

			headerSeen = true
			continue
		}

		if m := changelogTrailerRegexp.FindStringSubmatch(line); m != nil {
			result.Author = m[1]
			result.Date = strings.TrimSpace(m[2])
			break
		}

		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ChangelogError{Reason: fmt.Sprintf("debian/changelog: %s", err)}
	}

	if !headerSeen {
		return nil, &ChangelogError{Reason: "debian/changelog: no entries found"}
	}
	if result.Author == "" {
		return nil, &ChangelogError{Reason: "debian/changelog: entry has no trailer line"}
	}

	result.Text = strings.TrimRight(strings.Join(body, "\n"), "\n")

	for _, closes := range changelogClosesRegexp.FindAllString(result.Text, -1) {
		for _, bug := range changelogBugRegexp.FindAllString(closes, -1) {
			n, err := strconv.Atoi(bug)
			if err == nil {
				result.Closes = append(result.Closes, n)
			}
		}
	}

	return result, nil
}
