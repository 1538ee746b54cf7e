package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bbejeck/confluent-cli-plugins/internal/config"
	"github.com/bbejeck/confluent-cli-plugins/internal/confluent"
	"github.com/bbejeck/confluent-cli-plugins/internal/credentials"
)

// NewClusterCreateCmd returns the confluent-cluster-create plugin.
func NewClusterCreateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confluent-cluster-create",
		Short: "Create a Kafka cluster with API keys, Schema Registry and a client config",
		Long: `Creates a Kafka cluster with API keys, Schema Registry with API keys
and a client config template.

The API keys are written as JSON files and the client config as a
properties file to --output-dir. This plugin assumes confluent CLI
v3.0.0 or greater.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			name, _ := cmd.Flags().GetString("name")
			envID, _ := cmd.Flags().GetString("env")
			return createCluster(cmd, env, s, name, envID)
		},
	}

	cmd.Flags().String("name", "", "The name for your Confluent Kafka Cluster")
	cmd.Flags().String("env", "", "The environment id")
	cmd.Flags().String("cloud", "aws", fmt.Sprintf("Cloud provider (%s)", strings.Join(config.Clouds, "|")))
	cmd.Flags().String("region", "us-west-2", "Cloud region e.g us-west-2 (aws), westus (azure), us-west1 (gcp)")
	cmd.Flags().String("geo", "us", fmt.Sprintf("Cloud geographical region (%s)", strings.Join(config.Geos, "|")))
	cmd.Flags().String("client", "java", "Properties file used by client")
	cmd.Flags().String("output-dir", ".", "Directory for the API key and client config files")
	cobra.CheckErr(cmd.MarkFlagRequired("name"))
	cobra.CheckErr(config.BindFlags(cmd.Flags(), "cloud", "region", "geo", "client", "output-dir"))

	return newPluginCommand(env, cmd)
}

func createCluster(cmd *cobra.Command, env *Env, s *session, name, envID string) error {
	ctx := cmd.Context()
	cc := s.cfg.Cluster
	client := confluent.New(s.runner)
	now := env.Now()

	s.out.Info("Creating the Kafka cluster")
	cluster, err := client.CreateCluster(ctx, confluent.ClusterSpec{
		Name:        name,
		Environment: envID,
		Cloud:       cc.Cloud,
		Region:      cc.Region,
	})
	if err != nil {
		return err
	}
	s.out.Success("Created cluster %s (%s)", cluster.ID, name)

	s.out.Info("Generating api keys for the cluster")
	clusterKey, err := client.CreateAPIKey(ctx, cluster.ID, envID)
	if err != nil {
		return err
	}
	path, err := credentials.WriteAPIKey(env.Fs, cc.OutputDir, cluster.ID, credentials.APIKey(*clusterKey), now)
	if err != nil {
		return err
	}
	s.out.Success("Wrote cluster API key to %s", path)

	provider := cluster.Provider
	if provider == "" {
		provider = cc.Cloud
	}

	s.out.Info("Enabling Schema Registry")
	sr, err := client.EnableSchemaRegistry(ctx, strings.ToLower(provider), cc.Geo, envID)
	if err != nil {
		return err
	}

	s.out.Info("Generating API keys for Schema Registry")
	srKey, err := client.CreateAPIKey(ctx, sr.ID, envID)
	if err != nil {
		return err
	}
	path, err = credentials.WriteAPIKey(env.Fs, cc.OutputDir, sr.ID, credentials.APIKey(*srKey), now)
	if err != nil {
		return err
	}
	s.out.Success("Wrote Schema Registry API key to %s", path)

	s.out.Info("Generating client config")
	text, err := client.CreateClientConfig(ctx, confluent.ClientConfigSpec{
		Client:            cc.Client,
		ClusterID:         cluster.ID,
		Environment:       envID,
		ClusterKey:        *clusterKey,
		SchemaRegistryKey: *srKey,
	})
	if err != nil {
		return err
	}

	clientCfg, err := credentials.ParseClientConfig(text)
	if err != nil {
		return err
	}
	for _, p := range clientCfg.Unresolved {
		s.out.Warn("client config still contains placeholder %s", p)
	}
	path, err = credentials.WriteClientConfig(env.Fs, cc.OutputDir, cc.Client, cluster.ID, clientCfg, now)
	if err != nil {
		return err
	}

	s.out.Plain(fmt.Sprintf("\nStart %s client configs %s\n", cc.Client, strings.Repeat("#", 60)))
	s.out.Plain(clientCfg.Text)
	s.out.Plain(fmt.Sprintf("End %s client configs %s", cc.Client, strings.Repeat("#", 60)))
	s.out.Success("Wrote client config to %s", path)
	return nil
}
