// Package credentials reads and writes the files produced by cluster creation:
// API key JSON files and client configuration properties files.
//
// File names embed the resource id and a creation timestamp so repeated runs
// never overwrite each other. The JSON layout matches the output of
// `confluent api-key create -o json`, which lets a file written here be fed
// back into schema-purge via --secrets-file.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/magiconair/properties"
	"github.com/spf13/afero"
)

// TimestampFormat is the layout used in generated file names.
const TimestampFormat = "20060102150405"

// ErrIncomplete is returned when a secrets file lacks a key or secret.
var ErrIncomplete = errors.New("secrets file must contain api_key and api_secret")

// APIKey is the on-disk credential pair.
type APIKey struct {
	Key    string `json:"api_key"`
	Secret string `json:"api_secret"`
}

// APIKeyFileName returns the file name used for resourceID's key.
func APIKeyFileName(resourceID string, now time.Time) string {
	return fmt.Sprintf("api-key-%s-%s.json", resourceID, now.Format(TimestampFormat))
}

// ClientConfigFileName returns the file name used for a client config.
func ClientConfigFileName(client, clusterID string, now time.Time) string {
	return fmt.Sprintf("client-%s-%s-%s.properties", client, clusterID, now.Format(TimestampFormat))
}

// WriteAPIKey writes key to dir and returns the full path.
func WriteAPIKey(fs afero.Fs, dir, resourceID string, key APIKey, now time.Time) (string, error) {
	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal api key: %w", err)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, APIKeyFileName(resourceID, now))
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("failed to write api key file: %w", err)
	}
	return path, nil
}

// ReadAPIKey loads a key previously written by WriteAPIKey.
func ReadAPIKey(fs afero.Fs, path string) (*APIKey, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var key APIKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}
	if key.Key == "" || key.Secret == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrIncomplete)
	}
	return &key, nil
}

var placeholder = regexp.MustCompile(`\{\{\s*[A-Za-z0-9_]+\s*\}\}`)

// ClientConfig is a rendered client configuration.
type ClientConfig struct {
	Text string
	// Unresolved lists template placeholders the CLI left in place.
	Unresolved []string
	Keys       int
}

// ParseClientConfig validates text as a Java properties file.
func ParseClientConfig(text string) (*ClientConfig, error) {
	p, err := properties.LoadString(text)
	if err != nil {
		return nil, fmt.Errorf("client config is not a valid properties file: %w", err)
	}
	return &ClientConfig{
		Text:       text,
		Unresolved: placeholder.FindAllString(text, -1),
		Keys:       p.Len(),
	}, nil
}

// WriteClientConfig writes cfg to dir and returns the full path.
func WriteClientConfig(fs afero.Fs, dir, client, clusterID string, cfg *ClientConfig, now time.Time) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, ClientConfigFileName(client, clusterID, now))
	if err := afero.WriteFile(fs, path, []byte(cfg.Text), 0o600); err != nil {
		return "", fmt.Errorf("failed to write client config: %w", err)
	}
	return path, nil
}
