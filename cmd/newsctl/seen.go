package main

import (
	"errors"
	"fmt"

	"amazetimes/internal/infra/cache"

	"github.com/spf13/cobra"
)

func newSeenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen",
		Short: "Manage the ingestion seen-set",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget every feed link the worker has handled",
		Long: `Reset clears the Redis seen-set so the next crawl reconsiders every feed item.
Links already stored as articles are still skipped by the source URL check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.redisURL == "" {
				return errors.New("no Redis configured (--redis or REDIS_URL)")
			}
			ctx := cmd.Context()
			client, err := cache.NewRedisClient(ctx, a.redisURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			n, err := cache.NewSeenSet(client, cache.DefaultPrefix, 0).Clear(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
			return nil
		},
	})
	return cmd
}
