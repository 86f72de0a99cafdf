package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"proofkit/internal/config"
	"proofkit/internal/sqlite"
	"proofkit/internal/token"
)

const apiKeyBytes = 32

func newAPIKeyCommand() *cobra.Command {
	apikeyCmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage owner API keys",
	}
	apikeyCmd.AddCommand(newAPIKeyNewCommand())
	return apikeyCmd
}

func newAPIKeyNewCommand() *cobra.Command {
	var ownerID string
	var description string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Mint an API key for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID == "" {
				return fmt.Errorf("--owner is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("prepare database path: %w", err)
			}
			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			key, err := token.New(apiKeyBytes)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			keys := sqlite.NewKeyRepository(db)
			if err := keys.CreateKey(context.Background(), key, ownerID, description); err != nil {
				return fmt.Errorf("store key: %w", err)
			}

			// The plaintext key is shown exactly once; only its hash is stored.
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID the key authenticates as")
	cmd.Flags().StringVar(&description, "description", "", "Free-form note stored with the key")

	return cmd
}
