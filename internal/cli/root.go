package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "arkhamctl",
		Short: "CLI tool for the Arkham companion API",
		Long: `arkhamctl talks to the Arkham companion JSON API.

It covers accounts, the card and character catalog, game sessions,
the caller's seat in a session and the session event stream.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadTokens(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.PlayerToken, cfg.Language)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ARKHAM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Account token (env: ARKHAM_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Account token file (env: ARKHAM_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerToken, "player-token", cfg.PlayerToken, "Player token (env: ARKHAM_PLAYER_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerTokenFile, "player-token-file", cfg.PlayerTokenFile, "Player token file (env: ARKHAM_PLAYER_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Language, "language", "l", cfg.Language, "Preferred content language (env: ARKHAM_LANGUAGE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newCharactersCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
