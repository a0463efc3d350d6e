package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsroom/internal/rating"
	"newsroom/internal/store"
	"newsroom/internal/subscription"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	dbc, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer dbc.Close()
	logger.Info("schema up to date", zap.String("db", cfg.Database.Path))
	return nil
}

func runUpdateRatings(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dbc, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbc.Close()

	n, err := rating.NewEngine(store.New(dbc), logger).UpdateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %d authors\n", n)
	return nil
}

func runCreateCategory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dbc, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbc.Close()

	id, err := store.New(dbc).CreateCategory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("create category %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "category %d %s\n", id, args[0])
	return nil
}

func runSubscribers(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("category id %q: %w", args[0], err)
	}
	ctx := cmd.Context()
	dbc, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbc.Close()

	users, err := subscription.NewRegistry(store.New(dbc), logger).Subscribers(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintln(cmd.OutOrStdout(), u.Email)
	}
	return nil
}
