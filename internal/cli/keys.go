package cli

import (
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/bbejeck/confluent-cli-plugins/internal/confluent"
	"github.com/bbejeck/confluent-cli-plugins/internal/purge"
)

// NewKeysPurgeCmd returns the confluent-keys-purge plugin.
func NewKeysPurgeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confluent-keys-purge",
		Short: "Delete API keys for the current user, an environment or a service account",
		Long: `Deletes API keys for the current user, specified environment, or
service account. The number of keys found is shown and the purge only
proceeds after confirmation.

This plugin assumes confluent CLI v3.0.0 or greater.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := confluent.KeyFilter{}
			filter.Resource, _ = cmd.Flags().GetString("resource")
			filter.Environment, _ = cmd.Flags().GetString("env")
			filter.ServiceAccount, _ = cmd.Flags().GetString("sa")
			if filter.Environment != "" && filter.ServiceAccount != "" {
				return invalid("You can only specify one of environment id or service-account")
			}

			s, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return purgeKeys(cmd, env, s, filter)
		},
	}

	cmd.Flags().String("resource", "", "The resource id to filter results by")
	cmd.Flags().String("env", "", "The environment id to purge keys from")
	cmd.Flags().String("sa", "", "The service account id to purge keys from")

	return newPluginCommand(env, cmd)
}

func purgeKeys(cmd *cobra.Command, env *Env, s *session, filter confluent.KeyFilter) error {
	ctx := cmd.Context()
	p := &purge.Keys{
		Store:     confluent.New(s.runner),
		Confirmer: env.Prompter,
		Reporter:  &stepReporter{out: s.out},
		Filter:    filter,
	}

	keys, err := p.Discover(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		table := uitable.New()
		table.MaxColWidth = 50
		table.AddRow("KEY", "OWNER", "RESOURCE", "DESCRIPTION")
		for _, k := range keys {
			table.AddRow(k.Key, k.Owner, k.ResourceID, k.Description)
		}
		s.out.Plain(table.String())
	}

	outcome, err := p.Purge(ctx, keys)
	if err != nil {
		return err
	}

	switch outcome {
	case purge.NothingFound:
		s.out.Info("No API keys found")
	case purge.Declined:
		s.out.Info("Not purging keys, so quitting now")
	default:
		s.out.Success("Purged %d API keys", len(keys))
	}
	return nil
}
