package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsroom/internal/config"
	"newsroom/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsroom",
	Short: "Newsroom - news and article publishing service",
	Long: `Newsroom serves a small publishing site: authors post news and
articles, readers comment, rate and subscribe to categories.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE:  runMigrate,
}

var updateRatingsCmd = &cobra.Command{
	Use:   "update-ratings",
	Short: "Recompute every author's rating",
	RunE:  runUpdateRatings,
}

var createCategoryCmd = &cobra.Command{
	Use:   "create-category [name]",
	Short: "Add a post category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateCategory,
}

var subscribersCmd = &cobra.Command{
	Use:   "subscribers [category-id]",
	Short: "Print the email of every subscriber of a category",
	Long: `Prints one address per line, ordered by user id, for the newsletter
sender to read.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscribers,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, updateRatingsCmd, createCategoryCmd, subscribersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
