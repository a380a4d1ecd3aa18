package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/factory"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
)

var catalogPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Ensure the admin account and import a catalog file",
	Long: `Creates or promotes the admin account from auth.admin and, with --catalog,
upserts the cards and characters of a YAML or JSON catalog by name.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file to import")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	admin := cfg.Auth.Admin
	switch {
	case admin.Email != "" && admin.Password != "":
		user, created, err := app.AuthService.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		logger.Info("admin ready", slog.Uint64("user_id", uint64(user.ID)), slog.Bool("created", created))
	case admin.Email != "" || admin.Password != "":
		return errors.New("auth.admin needs both email and password")
	}

	if catalogPath == "" {
		return nil
	}
	f, err := os.Open(catalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	doc, err := catalog.ParseDocument(f)
	if err != nil {
		return err
	}
	result, err := app.Importer.Import(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cards: %d created, %d updated\ncharacters: %d created, %d updated\n",
		result.CardsCreated, result.CardsUpdated, result.CharactersCreated, result.CharactersUpdated)
	return nil
}
