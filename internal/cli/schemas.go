package cli

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bbejeck/confluent-cli-plugins/internal/confluent"
	"github.com/bbejeck/confluent-cli-plugins/internal/credentials"
	"github.com/bbejeck/confluent-cli-plugins/internal/purge"
)

// schemaPurgeOptions is assembled once from the flags before any command runs.
type schemaPurgeOptions struct {
	subjectPrefix string
	auth          confluent.SchemaRegistryAuth
	dryRun        bool
}

// NewSchemaPurgeCmd returns the confluent-schema-purge plugin.
func NewSchemaPurgeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confluent-schema-purge",
		Short: "Delete all schemas permanently",
		Long: `Deletes all schemas permanently.

Subjects whose schema references other subjects are soft-deleted first,
then the remaining subjects, and finally every discovered version is
hard deleted. Only one level of references is considered.

This plugin assumes confluent CLI v3.0.0 or greater.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := schemaPurgeOptionsFromFlags(cmd, env)
			if err != nil {
				return err
			}

			s, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return purgeSchemas(cmd, env, s, opts)
		},
	}

	cmd.Flags().String("subject-prefix", "", "List schemas for subjects matching the prefix")
	cmd.Flags().String("api-key", "", "The API key")
	cmd.Flags().String("api-secret", "", "The API secret")
	cmd.Flags().String("context", "", "The CLI context name")
	cmd.Flags().String("env", "", "The environment id")
	cmd.Flags().String("secrets-file", "", "Path to a JSON file with the API key and secret, "+
		"the --api-key and --api-secret flags take priority")
	cmd.Flags().Bool("dry-run", false, "Print the deletion plan without deleting anything")

	return newPluginCommand(env, cmd)
}

func schemaPurgeOptionsFromFlags(cmd *cobra.Command, env *Env) (schemaPurgeOptions, error) {
	flags := cmd.Flags()
	prefix, _ := flags.GetString("subject-prefix")
	key, _ := flags.GetString("api-key")
	secret, _ := flags.GetString("api-secret")
	cliContext, _ := flags.GetString("context")
	envID, _ := flags.GetString("env")
	secretsFile, _ := flags.GetString("secrets-file")
	dryRun, _ := flags.GetBool("dry-run")

	switch {
	case key != "" && secret != "":
	case key != "" || secret != "":
		return schemaPurgeOptions{}, invalid("--api-key and --api-secret must be given together")
	case secretsFile != "":
		creds, err := credentials.ReadAPIKey(env.Fs, secretsFile)
		if err != nil {
			return schemaPurgeOptions{}, err
		}
		key, secret = creds.Key, creds.Secret
	default:
		return schemaPurgeOptions{}, invalid("You must specify --api-key and --api-secret or --secrets-file")
	}

	return schemaPurgeOptions{
		subjectPrefix: prefix,
		dryRun:        dryRun,
		auth: confluent.SchemaRegistryAuth{
			Context:     cliContext,
			Environment: envID,
			APIKey:      key,
			APISecret:   secret,
		},
	}, nil
}

func purgeSchemas(cmd *cobra.Command, env *Env, s *session, opts schemaPurgeOptions) error {
	ctx := cmd.Context()
	p := &purge.Schemas{
		Registry:      confluent.New(s.runner).SchemaRegistry(opts.auth),
		Confirmer:     env.Prompter,
		Reporter:      &stepReporter{out: s.out},
		SubjectPrefix: opts.subjectPrefix,
	}

	records, err := p.Discover(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.out.Info("No schemas found")
		return nil
	}

	table := uitable.New()
	table.AddRow("SUBJECT", "VERSION", "SCHEMA ID")
	for _, r := range records {
		table.AddRow(r.Subject, r.Version, r.SchemaID)
	}
	s.out.Plain(table.String())

	if opts.dryRun {
		plan, err := p.Plan(ctx, records)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(plan)
		if err != nil {
			return fmt.Errorf("failed to render plan: %w", err)
		}
		s.out.Info("Dry run, nothing deleted. Plan:")
		s.out.Plain(string(out))
		return nil
	}

	outcome, err := p.Purge(ctx, records)
	if err != nil {
		return err
	}
	if outcome == purge.Declined {
		s.out.Info("Quitting and leaving all schemas in-place")
		return nil
	}
	s.out.Success("Deleted %d schemas", len(records))
	return nil
}
