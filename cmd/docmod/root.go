package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "docmod",
	Short: "docmod - apply update operators to JSON/YAML documents",
	Long: `docmod applies MongoDB-style update operators ($pullAll, $set, $unset)
to JSON or YAML documents and emits the resulting documents together with a
replayable $set/$unset change log.

Examples:
  # Remove tags from every document in a YAML stream
  docmod apply '{"$pullAll": {"tags": ["stale"]}}' inventory.yaml

  # Edit a JSON document in place and print the change log
  docmod apply --write --oplog '{"$set": {"state": "clean"}}' item.json

  # Bind a positional path part to a matched array index
  docmod apply --matched-field 2 '{"$pullAll": {"a.$": [0]}}' doc.json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(cfg.GetString("log-level"), cfg.GetString("log-format"))
	},
	SilenceUsage: true,
}

// cfg resolves configuration from flags and DOCMOD_* environment variables,
// flags taking precedence (e.g. --log-level / DOCMOD_LOG_LEVEL).
var cfg = viper.New()

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text|json")

	cfg.SetEnvPrefix("DOCMOD")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()
	if err := cfg.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}
