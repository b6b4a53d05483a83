package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Aleph-Alpha/vecmigrate/v1/config"
)

// options are the flags shared by every subcommand.
type options struct {
	configFile string
	envFile    string
	endpoint   string
	apiKey     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "vecmigrate",
		Short: "Migrate Weaviate collections to named vectors",
		Long: `vecmigrate restores a collection from a Weaviate backup, copies its
objects into a collection that stores the vector under the named vector
"default", and promotes that collection to the original name.

Configuration is read from defaults, a YAML file (--config), a dotenv file
(--env-file), the environment and finally the flags below.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "path to a YAML configuration file")
	f.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded into the environment when present")
	f.StringVar(&opts.endpoint, "endpoint", "", "Weaviate base URL (WEAVIATE_ENDPOINT)")
	f.StringVar(&opts.apiKey, "api-key", "", "Weaviate API key (WEAVIATE_API_KEY)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warning or error (LOG_LEVEL)")

	cmd.AddCommand(newMigrateCmd(opts), newInspectCmd(opts))
	return cmd
}

// load reads the layered configuration and applies the shared flags that
// were set explicitly.
func (o *options) load(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configFile, o.envFile)
	if err != nil {
		return nil, err
	}
	if flags.Changed("endpoint") {
		cfg.Weaviate.Endpoint = o.endpoint
	}
	if flags.Changed("api-key") {
		cfg.Weaviate.ApiKey = o.apiKey
	}
	if flags.Changed("log-level") {
		cfg.Logger.Level = o.logLevel
	}
	return cfg, nil
}
