// Package confluentcliplugins is a collection of confluent CLI plugins that
// automate multi-step provisioning and cleanup workflows.
//
// # Overview
//
// Each plugin is an independent binary the confluent CLI discovers on PATH:
//   - confluent-cluster-create: Kafka cluster, API keys, Schema Registry and client config
//   - confluent-keys-purge: bulk delete API keys by environment, service account or user
//   - confluent-schema-purge: reference-ordered soft delete then permanent delete of schemas
//   - confluent-plugin-search: list and install plugins from the published repository
//
// # Installation
//
//	go install github.com/bbejeck/confluent-cli-plugins/cmd/...@latest
//
// # Quick Start
//
//	confluent cluster create --name demo --output-dir ./creds
//	confluent schema purge --secrets-file ./creds/api-key-lsrc-xxxx-20240101120000.json
//	confluent keys purge --env env-123
//
// # Configuration
//
// Flags override CONFLUENT_PLUGINS_* environment variables, which override
// $HOME/.confluent-plugins/config.yaml. Run any plugin with the config
// subcommand to see the resolved values.
//
// All plugins assume confluent CLI v3.0.0 or greater.
package confluentcliplugins
