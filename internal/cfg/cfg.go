// Package cfg wires command-line flags and environment configuration
// through viper.
package cfg

import (
	"strings"

	"grabarr/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "grabarr",
	Short: "Grabarr acquires media via an external fetch tool and serves it for playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("execute", true)
		return nil
	},
}

// InitCommands initializes the root command, its flags, and env binding.
func InitCommands() {
	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debug level (0-5)")
	rootCmd.PersistentFlags().String(keys.Port, "8686", "HTTP listen port")
	rootCmd.PersistentFlags().String(keys.DataDir, "", "Directory for the database and log file")
	rootCmd.PersistentFlags().String(keys.MediaDir, "", "Root directory for downloaded media")
	rootCmd.PersistentFlags().String(keys.LogFile, "", "Log file path (default <data-dir>/grabarr.log)")
	rootCmd.PersistentFlags().String(keys.ExternalURL, "", "Externally reachable base URL used in rewritten playlists")
	rootCmd.PersistentFlags().String(keys.CookieFile, "", "Netscape cookie file passed to the fetch tool")
	rootCmd.PersistentFlags().String(keys.CookieBrowser, "", "Domain whose browser cookies are exported for the fetch tool")
	rootCmd.PersistentFlags().Int(keys.Concurrency, 0, "Worker concurrency override (0 = read from settings)")
	rootCmd.PersistentFlags().Bool(keys.OfficialFilter, false, "Require the official-source preflight for monitored downloads")
	rootCmd.PersistentFlags().Duration(keys.ToolTimeout, 0, "Hard timeout per external tool invocation (0 = none)")

	for _, key := range []string{
		keys.DebugLevel,
		keys.Port,
		keys.DataDir,
		keys.MediaDir,
		keys.LogFile,
		keys.ExternalURL,
		keys.CookieFile,
		keys.CookieBrowser,
		keys.Concurrency,
		keys.OfficialFilter,
		keys.ToolTimeout,
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("GRABARR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	setDefaults()
}

// Execute parses flags and runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setDefaults() {
	viper.SetDefault(keys.SettingsCacheTTL, "30s")
	viper.SetDefault(keys.MediaRootCacheTTL, "1m")
	viper.SetDefault(keys.StreamTokenTTL, "1m")
	viper.SetDefault(keys.ConcurrencyRetries, 3)
	viper.SetDefault(keys.ArtworkInterval, "1s")
}
