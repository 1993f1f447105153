// Package cmd implements the contactmirror CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/contactmirror/pkg/accounts/files"
	"github.com/agentstation/contactmirror/pkg/logging"
)

// Global flags shared by every command.
var (
	cfgFile   string
	storeDir  string
	verbose   bool
	quiet     bool
	noColor   bool
	logFormat string
)

// newRootCmd builds the root command tree.
func newRootCmd(version, commit, date string) *cobra.Command {
	root := &cobra.Command{
		Use:   "contactmirror",
		Short: "Mirror contact records across address-book accounts",
		Long: `contactmirror fetches contact records from multiple address-book
accounts, detects duplicates across them, merges each duplicate cluster into
a single golden record, and writes the unified record set back to every
account so they all hold the same contacts.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			initConfig()
			configureLogging()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.contactmirror.yaml)")
	root.PersistentFlags().StringVarP(&storeDir, "dir", "d", "", "account store directory (default from config, then .)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "log format (auto, console, json)")

	root.AddCommand(newAccountsCmd())
	root.AddCommand(newSyncCmd())

	return root
}

// Execute runs the CLI and prints any top-level error.
func Execute(ctx context.Context, version, commit, date string) error {
	root := newRootCmd(version, commit, date)
	root.SetContext(ctx)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// initConfig loads configuration in order of precedence: flags, environment
// variables, .env files, then the config file.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CONTACTMIRROR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".contactmirror")
		}
	}

	// Missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()

	if storeDir == "" {
		storeDir = viper.GetString("store_dir")
	}
	if storeDir == "" {
		storeDir = "."
	}
}

// loadEnvFiles loads environment variables from .env files, with .env.local
// taking precedence over .env.
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Overload(file)
		}
	}
}

// configureLogging sets the default logger from the global flags.
func configureLogging() {
	cfg := logging.DefaultConfig()
	cfg.Format = logFormat
	cfg.NoColor = cfg.NoColor || noColor
	switch {
	case verbose:
		cfg.Level = "debug"
	case quiet:
		cfg.Level = "error"
	}
	logging.Configure(cfg)
}

// openStore opens the file-backed account store under the configured
// directory.
func openStore() (*files.Store, error) {
	return files.New(storeDir)
}
