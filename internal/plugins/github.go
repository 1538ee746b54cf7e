// Package plugins discovers and installs confluent CLI plugins published in a
// GitHub repository. Each plugin lives in its own top-level directory whose
// first file is the executable.
package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
)

// DefaultRepoURL is the contents endpoint of the published plugin repository.
const DefaultRepoURL = "https://api.github.com/repos/bbejeck/confluent-cli-plugins/contents/"

// searchDir is the directory holding this plugin; it is never offered.
const searchDir = "search"

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	URL    string
	Status int
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("There was an error connecting to GitHub - %d: %s", e.Status, e.Reason)
}

// Entry is one item of a GitHub contents listing.
type Entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// Client talks to the GitHub contents API with a bearer token.
type Client struct {
	http    *http.Client
	repoURL string
}

// NewClient returns a Client authenticating with token.
func NewClient(ctx context.Context, token, repoURL string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return NewClientWithHTTP(oauth2.NewClient(ctx, src), repoURL)
}

// NewClientWithHTTP returns a Client using an already authenticated client.
func NewClientWithHTTP(hc *http.Client, repoURL string) *Client {
	if repoURL == "" {
		repoURL = DefaultRepoURL
	}
	if !strings.HasSuffix(repoURL, "/") {
		repoURL += "/"
	}
	return &Client{http: hc, repoURL: repoURL}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &APIError{URL: url, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}
	return resp, nil
}

func (c *Client) listing(ctx context.Context, url string) ([]Entry, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse listing of %s: %w", url, err)
	}
	return entries, nil
}

// List returns the installable plugin names in repository order.
func (c *Client) List(ctx context.Context) ([]string, error) {
	entries, err := c.listing(ctx, c.repoURL)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type == "dir" && e.Name != searchDir {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Installed describes a plugin written to disk.
type Installed struct {
	Name string
	Path string
	Size int64
}

// Install downloads plugin into dir and marks it executable.
func (c *Client) Install(ctx context.Context, fs afero.Fs, plugin, dir string) (*Installed, error) {
	entries, err := c.listing(ctx, c.repoURL+plugin)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 || entries[0].DownloadURL == "" {
		return nil, fmt.Errorf("plugin %s has no downloadable file", plugin)
	}
	file := entries[0]

	resp, err := c.get(ctx, file.DownloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	path := filepath.Join(dir, filepath.Base(file.Name))
	out, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := MakeExecutable(fs, path); err != nil {
		return nil, err
	}
	return &Installed{Name: file.Name, Path: path, Size: n}, nil
}

// MakeExecutable adds the user, group and other execute bits to path.
func MakeExecutable(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := fs.Chmod(path, info.Mode()|0o111); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	return nil
}
