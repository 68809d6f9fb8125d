package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roomlab/roombook/internal/config"
	"github.com/roomlab/roombook/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo user accounts",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var demoUsers = []user.CreateUserInput{
	{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "admin1234",
	},
	{
		Name:     "Alice Kim",
		Email:    "alice@example.com",
		Password: "alice1234",
	},
	{
		Name:     "Bob Park",
		Email:    "bob@example.com",
		Password: "bob1234",
	},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userStore := user.NewStore(pool)

	created := 0
	for _, input := range demoUsers {
		existing, err := userStore.GetByEmail(ctx, input.Email)
		if err != nil {
			return fmt.Errorf("checking user %q: %w", input.Email, err)
		}
		if existing != nil {
			slog.Info("user already exists, skipping", "email", input.Email)
			continue
		}

		u, err := userStore.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("creating user %q: %w", input.Email, err)
		}
		slog.Info("created user", "id", u.ID, "email", u.Email)
		created++
	}

	fmt.Printf("\n=== Demo Users Seeded ===\n")
	fmt.Printf("Created:   %d of %d accounts\n", created, len(demoUsers))
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -c cookies.txt -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("    -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"email\":\"alice@example.com\",\"password\":\"alice1234\"}'\n")
	fmt.Printf("  curl -b cookies.txt 'http://localhost:8080/api/timetable?view=week&anchor_date=2026-09-01'\n")

	return nil
}
