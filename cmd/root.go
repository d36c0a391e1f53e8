// Package cmd implements the faqhub command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/faqhub/cmd/crawl"
	"github.com/jonesrussell/faqhub/cmd/migrate"
	"github.com/jonesrussell/faqhub/cmd/platforms"
	"github.com/jonesrussell/faqhub/cmd/reembed"
	"github.com/jonesrussell/faqhub/cmd/scheduler"
	"github.com/jonesrussell/faqhub/cmd/serve"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "faqhub",
	Short:         "Help-center crawler and semantic FAQ search",
	Long:          `faqhub crawls platform help centers, communities and feeds, stores deduplicated articles with paragraph embeddings and serves semantic search over them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	// Missing .env files are fine; variables may come from the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	if err := bindFlags(); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("faqhub version %s\n", version)
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(scheduler.Command())
	rootCmd.AddCommand(migrate.Command())
	rootCmd.AddCommand(reembed.Command())
	rootCmd.AddCommand(platforms.Command())
}

// bindFlags exposes the global flags through viper, with FAQHUB_CONFIG and
// APP_DEBUG as environment fallbacks.
func bindFlags() error {
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindEnv("config", "FAQHUB_CONFIG"); err != nil {
		return fmt.Errorf("failed to bind FAQHUB_CONFIG: %w", err)
	}
	if err := viper.BindEnv("debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	return nil
}
