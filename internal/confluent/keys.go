package confluent

import (
	"context"

	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
)

// KeyFilter narrows `api-key list`. Environment and ServiceAccount are
// mutually exclusive; when both are empty the listing is scoped to the
// current user.
type KeyFilter struct {
	Resource       string
	Environment    string
	ServiceAccount string
}

// Args returns the list arguments for the filter.
func (f KeyFilter) Args() []string {
	args := []string{"api-key", "list", "-o", "json"}
	if f.Resource != "" {
		args = append(args, "--resource", f.Resource)
	}
	if f.Environment != "" {
		args = append(args, "--environment", f.Environment)
	}
	if f.ServiceAccount != "" {
		args = append(args, "--service-account", f.ServiceAccount)
	}
	if f.Environment == "" && f.ServiceAccount == "" {
		args = append(args, "--current-user")
	}
	return args
}

// KeySummary is one entry of `api-key list -o json`.
type KeySummary struct {
	Key          string `json:"key"`
	Description  string `json:"description"`
	Owner        string `json:"owner"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

// ListAPIKeys lists the API keys matching f.
func (c *Client) ListAPIKeys(ctx context.Context, f KeyFilter) ([]KeySummary, error) {
	var keys []KeySummary
	if err := runner.RunJSON(ctx, c.r, &keys, f.Args()...); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteAPIKey deletes key without prompting and returns the CLI's message.
func (c *Client) DeleteAPIKey(ctx context.Context, key string) (string, error) {
	return runner.RunText(ctx, c.r, "api-key", "delete", key, "--force")
}
