package cli

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/bbejeck/confluent-cli-plugins/internal/config"
	"github.com/bbejeck/confluent-cli-plugins/internal/plugins"
)

// NewPluginSearchCmd returns the confluent-plugin-search plugin.
func NewPluginSearchCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confluent-plugin-search",
		Short: "List the Confluent CLI plugins available and install them",
		Long: `Lists the Confluent CLI plugins published in the plugin repository
and installs the selected ones into --path with execute permissions.

A GitHub personal access token is required, either with --token or the
CONFLUENT_PLUGINS_TOKEN environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.cfg.Plugins.Token == "" {
				return invalid("You must specify --token or set CONFLUENT_PLUGINS_TOKEN")
			}
			return searchPlugins(cmd, env, s)
		},
	}

	cmd.Flags().String("token", "", "Your personal access token to use GitHub API")
	cmd.Flags().String("path", "/usr/local/bin", "Path to save commands")
	cmd.Flags().String("repo-url", plugins.DefaultRepoURL, "GitHub contents API URL of the plugin repository")
	cobra.CheckErr(config.BindFlags(cmd.Flags(), "token", "path", "repo-url"))

	return newPluginCommand(env, cmd)
}

func searchPlugins(cmd *cobra.Command, env *Env, s *session) error {
	ctx := cmd.Context()
	client := env.NewGitHub(ctx, s.cfg)

	names, err := client.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.out.Info("No plugins available")
		return nil
	}

	s.out.Info("Available plugins to install:")
	table := uitable.New()
	for i, name := range names {
		table.AddRow(i+1, name)
	}
	s.out.Plain(table.String())

	answer, err := env.Prompter.Input(ctx,
		"Enter a single number or a comma separated list to install plugin(s) or n to quit: ")
	if err != nil {
		return err
	}
	chosen, err := plugins.ParseSelection(answer, names)
	if errors.Is(err, plugins.ErrQuit) {
		s.out.Info("Bye!!")
		return nil
	}
	if err != nil {
		return invalid("%v", err)
	}

	dir := s.cfg.Plugins.Path
	if err := env.Fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range chosen {
		s.out.Info("Getting plugin %s", name)
		installed, err := client.Install(ctx, env.Fs, name, dir)
		if err != nil {
			return err
		}
		s.logger.Debug("installed plugin", "name", installed.Name, "path", installed.Path, "bytes", installed.Size)
		s.out.Success("Successfully installed %s to %s (%s)",
			installed.Name, dir, humanize.Bytes(uint64(installed.Size)))
	}
	return nil
}
