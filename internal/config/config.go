// Package config provides configuration management for the confluent plugins.
//
// It implements the disciplined Viper pattern where Viper stays contained
// in this package and the rest of the codebase receives explicit Config structs.
// Configuration sources are resolved in this order: flags > env > config file > defaults.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bbejeck/confluent-cli-plugins/internal/plugins"
	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
)

// Allowed values for the enumerated cluster-create flags.
var (
	Clouds  = []string{"aws", "azure", "gcp"}
	Geos    = []string{"apac", "eu", "us"}
	Clients = []string{
		"clojure", "cpp", "csharp", "go", "groovy", "java", "kotlin",
		"ktor", "nodejs", "python", "restapi", "ruby", "rust", "scala", "springboot",
	}
)

// Config is the explicit configuration struct
// This is what the rest of the codebase sees
type Config struct {
	Debug   bool   `yaml:"debug"`
	CLIPath string `yaml:"cli-path"`
	LogFile string `yaml:"log-file,omitempty"`

	Cluster ClusterConfig `yaml:"cluster"`
	Plugins PluginConfig  `yaml:"plugins"`
}

// ClusterConfig holds the cluster-create defaults
type ClusterConfig struct {
	Cloud     string `yaml:"cloud"`
	Region    string `yaml:"region"`
	Geo       string `yaml:"geo"`
	Client    string `yaml:"client"`
	OutputDir string `yaml:"output-dir"`
}

// PluginConfig holds the plugin-search settings
type PluginConfig struct {
	Token   string `yaml:"-"`
	RepoURL string `yaml:"repo-url"`
	Path    string `yaml:"path"`
}

// Init initializes viper with defaults and config file paths
func Init() error {
	// Set config file name and type
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config file search paths
	viper.AddConfigPath("$HOME/.confluent-plugins")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("debug", false)
	viper.SetDefault("cli-path", runner.DefaultBinary)
	viper.SetDefault("log-file", "")
	viper.SetDefault("cloud", "aws")
	viper.SetDefault("region", "us-west-2")
	viper.SetDefault("geo", "us")
	viper.SetDefault("client", "java")
	viper.SetDefault("output-dir", ".")
	viper.SetDefault("token", "")
	viper.SetDefault("repo-url", plugins.DefaultRepoURL)
	viper.SetDefault("path", "/usr/local/bin")

	// Bind environment variables with prefix
	viper.SetEnvPrefix("CONFLUENT_PLUGINS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// BindFlags binds the named flags to the viper keys of the same name
func BindFlags(flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(name, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads from all sources and returns explicit Config
func Load() (*Config, error) {
	cfg := &Config{
		Debug:   viper.GetBool("debug"),
		CLIPath: viper.GetString("cli-path"),
		LogFile: viper.GetString("log-file"),
		Cluster: ClusterConfig{
			Cloud:     viper.GetString("cloud"),
			Region:    viper.GetString("region"),
			Geo:       viper.GetString("geo"),
			Client:    viper.GetString("client"),
			OutputDir: viper.GetString("output-dir"),
		},
		Plugins: PluginConfig{
			Token:   viper.GetString("token"),
			RepoURL: viper.GetString("repo-url"),
			Path:    viper.GetString("path"),
		},
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures config is sane
func (c *Config) Validate() error {
	if c.CLIPath == "" {
		return fmt.Errorf("cli-path must not be empty")
	}

	if !slices.Contains(Clouds, c.Cluster.Cloud) {
		return fmt.Errorf("invalid cloud: %s (must be one of %v)", c.Cluster.Cloud, Clouds)
	}

	if !slices.Contains(Geos, c.Cluster.Geo) {
		return fmt.Errorf("invalid geo: %s (must be one of %v)", c.Cluster.Geo, Geos)
	}

	if !slices.Contains(Clients, c.Cluster.Client) {
		return fmt.Errorf("invalid client: %s (must be one of %v)", c.Cluster.Client, Clients)
	}

	if c.Cluster.Region == "" {
		return fmt.Errorf("region must not be empty")
	}

	return nil
}

// Display shows current config (for the config subcommand)
func Display() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(not found)"
	}

	token := "(not set)"
	if cfg.Plugins.Token != "" {
		token = "(set)"
	}

	return fmt.Sprintf(`Configuration:
%s
Token:              %s

Sources:
  Config file:        %s
  Environment:        CONFLUENT_PLUGINS_*
  Flags:              (per command)
`, out, token, configFile), nil
}
