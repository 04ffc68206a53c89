// Package archive talks to the official Debian archive: origin tarball
// metadata, bug status and pool downloads
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"golang.org/x/time/rate"

	"github.com/mentors-dev/importer/deb"
)

const clientTimeout = 60 * time.Second

// Error is a client-side failure talking to the archive: network trouble,
// unexpected payload or oversized download
type Error struct {
	URL    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.URL, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FileInfo describes one source file known to the archive
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

type srcFilesResponse struct {
	Package string     `json:"package"`
	Version string     `json:"version"`
	Files   []FileInfo `json:"files"`
}

type bugResponse struct {
	Bug     int    `json:"bug"`
	Status  string `json:"status"`
	Subject string `json:"subject"`
}

// Client queries the archive API with rate limiting and bounded downloads
type Client struct {
	baseURL     string
	maxDownload int64
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates an archive client
func NewClient(baseURL string, maxDownload int64, ratePerSecond float64) *Client {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxDownload: maxDownload,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// SourceFiles returns the archive's record of source files for (package, version).
//
// known is false when the archive has never seen this package version.
func (c *Client) SourceFiles(ctx context.Context, pkg, version string) (files []FileInfo, known bool, err error) {
	url := fmt.Sprintf("%s/mr/package/%s/%s/srcfiles", c.baseURL, pkg, version)

	var decoded srcFilesResponse
	found, err := c.getJSON(ctx, url, &decoded)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	return decoded.Files, true, nil
}

// BugStatus queries the bug tracker for the status of closed bugs.
//
// Best-effort: callers are expected to tolerate failure with a warning.
func (c *Client) BugStatus(ctx context.Context, bugs []int) (map[int]string, error) {
	result := make(map[int]string, len(bugs))

	for _, bug := range bugs {
		url := fmt.Sprintf("%s/mr/bug/%d", c.baseURL, bug)

		var decoded bugResponse
		found, err := c.getJSON(ctx, url, &decoded)
		if err != nil {
			return nil, err
		}
		if found {
			result[bug] = decoded.Status
		}
	}

	return result, nil
}

// FetchPoolFile downloads one file from the archive pool into destination path
func (c *Client) FetchPoolFile(ctx context.Context, component, pkg, filename, destination string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/debian/pool/%s/%s/%s/%s",
		c.baseURL, component, deb.PoolBucket(pkg), pkg, filename)

	req, err := grab.NewRequest(destination, url)
	if err != nil {
		return &Error{URL: url, Reason: "invalid download request", Err: err}
	}
	req = req.WithContext(ctx)

	resp := grab.DefaultClient.Do(req)

	// enforce the size cap while the transfer runs
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.maxDownload > 0 && resp.BytesComplete() > c.maxDownload {
				resp.Cancel()
				return &Error{URL: url,
					Reason: fmt.Sprintf("download exceeds maximum size %d", c.maxDownload)}
			}
		case <-resp.Done:
			if err := resp.Err(); err != nil {
				return &Error{URL: url, Reason: "download failed", Err: err}
			}
			if c.maxDownload > 0 && resp.Size() > c.maxDownload {
				return &Error{URL: url,
					Reason: fmt.Sprintf("download exceeds maximum size %d", c.maxDownload)}
			}
			return nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, url string, target interface{}) (found bool, err error) {
	if err = c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, &Error{URL: url, Reason: "invalid request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &Error{URL: url, Reason: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &Error{URL: url, Reason: "HTTP code " + strconv.Itoa(resp.StatusCode)}
	}

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return false, &Error{URL: url, Reason: "malformed JSON response", Err: err}
	}

	return true, nil
}
