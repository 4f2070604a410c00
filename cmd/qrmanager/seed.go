package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/aaoeclipse/serverless-qr-manager/internal/db"
	"github.com/aaoeclipse/serverless-qr-manager/internal/seed"
	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the table with development tenant profiles",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		client, err := db.Connect(ctx, awsConfig, cfg.UsersTable)
		if err != nil {
			return fmt.Errorf("failed to connect to table: %w", err)
		}

		logrus.Info("Connected to table")

		table := store.NewDB(client, cfg.UsersTable)

		logrus.Info("Seeding tenant profiles...")
		if err := seed.SeedFakeProfiles(ctx, table); err != nil {
			return fmt.Errorf("failed to seed profiles: %w", err)
		}

		logrus.Info("Tenant profiles seeded successfully")

		return nil
	},
}
