// Package confluent wraps the confluent CLI commands used by the plugins.
//
// Each operation builds its argument list once from an immutable spec
// value and hands it to a runner.Runner; nothing here keeps state between
// calls.
package confluent

import (
	"context"
	"fmt"

	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
)

// Client issues confluent CLI commands through a Runner.
type Client struct {
	r runner.Runner
}

// New returns a Client backed by r.
func New(r runner.Runner) *Client {
	return &Client{r: r}
}

// ClusterSpec describes the Kafka cluster to create.
type ClusterSpec struct {
	Name        string
	Environment string
	Cloud       string
	Region      string
}

// Cluster is the subset of `kafka cluster create -o json` we use.
type Cluster struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Region   string `json:"region"`
}

// APIKey is a key/secret pair as emitted by `api-key create -o json`.
type APIKey struct {
	Key    string `json:"api_key"`
	Secret string `json:"api_secret"`
}

// SchemaRegistry is the subset of `schema-registry cluster enable -o json` we use.
type SchemaRegistry struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint_url"`
}

// ClientConfigSpec selects the client-config template and the credentials
// substituted into it.
type ClientConfigSpec struct {
	Client            string
	ClusterID         string
	Environment       string
	ClusterKey        APIKey
	SchemaRegistryKey APIKey
}

func withEnvironment(args []string, env string) []string {
	if env == "" {
		return args
	}
	return append(args, "--environment", env)
}

// CreateCluster creates a Kafka cluster.
func (c *Client) CreateCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	args := withEnvironment([]string{
		"kafka", "cluster", "create", spec.Name,
		"-o", "json",
		"--cloud", spec.Cloud,
		"--region", spec.Region,
	}, spec.Environment)

	var cluster Cluster
	if err := runner.RunJSON(ctx, c.r, &cluster, args...); err != nil {
		return nil, err
	}
	if cluster.ID == "" {
		return nil, fmt.Errorf("cluster create returned no id")
	}
	return &cluster, nil
}

// CreateAPIKey creates an API key scoped to resourceID.
func (c *Client) CreateAPIKey(ctx context.Context, resourceID, env string) (*APIKey, error) {
	args := withEnvironment([]string{
		"api-key", "create", "--resource", resourceID, "-o", "json",
	}, env)

	var key APIKey
	if err := runner.RunJSON(ctx, c.r, &key, args...); err != nil {
		return nil, err
	}
	return &key, nil
}

// EnableSchemaRegistry enables Schema Registry for the environment.
func (c *Client) EnableSchemaRegistry(ctx context.Context, cloud, geo, env string) (*SchemaRegistry, error) {
	args := withEnvironment([]string{
		"schema-registry", "cluster", "enable",
		"--cloud", cloud,
		"--geo", geo,
		"-o", "json",
	}, env)

	var sr SchemaRegistry
	if err := runner.RunJSON(ctx, c.r, &sr, args...); err != nil {
		return nil, err
	}
	if sr.ID == "" {
		return nil, fmt.Errorf("schema-registry enable returned no id")
	}
	return &sr, nil
}

// CreateClientConfig renders the client properties for spec.Client.
func (c *Client) CreateClientConfig(ctx context.Context, spec ClientConfigSpec) (string, error) {
	args := withEnvironment([]string{
		"kafka", "client-config", "create", spec.Client,
		"--cluster", spec.ClusterID,
		"--api-key", spec.ClusterKey.Key,
		"--api-secret", spec.ClusterKey.Secret,
		"--schema-registry-api-key", spec.SchemaRegistryKey.Key,
		"--schema-registry-api-secret", spec.SchemaRegistryKey.Secret,
	}, spec.Environment)

	return runner.RunText(ctx, c.r, args...)
}
