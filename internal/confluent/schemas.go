package confluent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
)

// AllVersions selects every version of a subject in a delete.
const AllVersions = "all"

// SchemaRegistryAuth carries the connection flags shared by every
// schema-registry command. It is assembled once per invocation.
type SchemaRegistryAuth struct {
	Context     string
	Environment string
	APIKey      string
	APISecret   string
}

func (a SchemaRegistryAuth) args() []string {
	var args []string
	if a.Context != "" {
		args = append(args, "--context", a.Context)
	}
	if a.Environment != "" {
		args = append(args, "--environment", a.Environment)
	}
	return append(args, "--api-key", a.APIKey, "--api-secret", a.APISecret)
}

// SchemaSummary is one entry of `schema-registry schema list -o json`.
type SchemaSummary struct {
	SchemaID int    `json:"schema_id"`
	Subject  string `json:"subject"`
	Version  int    `json:"version"`
	Type     string `json:"type"`
}

// SchemaReference is a declared dependency on another subject.
type SchemaReference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

type describeOutput struct {
	Schemas []struct {
		References []SchemaReference `json:"references"`
	} `json:"schemas"`
}

// SchemaRegistryClient runs schema-registry commands with fixed credentials.
type SchemaRegistryClient struct {
	r    runner.Runner
	auth SchemaRegistryAuth
}

// SchemaRegistry returns a client bound to auth.
func (c *Client) SchemaRegistry(auth SchemaRegistryAuth) *SchemaRegistryClient {
	return &SchemaRegistryClient{r: c.r, auth: auth}
}

// ListSchemas lists schemas, optionally restricted to a subject prefix.
func (s *SchemaRegistryClient) ListSchemas(ctx context.Context, subjectPrefix string) ([]SchemaSummary, error) {
	args := []string{"schema-registry", "schema", "list", "--output", "json"}
	if subjectPrefix != "" {
		args = append(args, "--subject-prefix", subjectPrefix)
	}
	args = append(args, s.auth.args()...)

	var schemas []SchemaSummary
	if err := runner.RunJSON(ctx, s.r, &schemas, args...); err != nil {
		return nil, err
	}
	return schemas, nil
}

// References returns the references declared by schemaID. Only the
// schema itself is inspected; references of references are not followed.
func (s *SchemaRegistryClient) References(ctx context.Context, schemaID int) ([]SchemaReference, error) {
	args := append([]string{
		"schema-registry", "schema", "describe", strconv.Itoa(schemaID),
		"--show-references", "--output", "json",
	}, s.auth.args()...)

	var out describeOutput
	if err := runner.RunJSON(ctx, s.r, &out, args...); err != nil {
		return nil, err
	}
	if len(out.Schemas) == 0 {
		return nil, fmt.Errorf("describe of schema %d returned no schemas", schemaID)
	}
	return out.Schemas[0].References, nil
}

// DeleteSchema deletes version of subject. A soft delete is recoverable;
// a permanent delete is not and requires a prior soft delete.
func (s *SchemaRegistryClient) DeleteSchema(ctx context.Context, subject, version string, permanent bool) (string, error) {
	args := []string{"schema-registry", "schema", "delete", "--force"}
	if permanent {
		args = append(args, "--permanent")
	}
	args = append(args, "--version", version)
	args = append(args, s.auth.args()...)
	args = append(args, "--subject", subject)

	return runner.RunText(ctx, s.r, args...)
}
