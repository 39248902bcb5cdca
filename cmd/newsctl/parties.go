package main

import (
	"fmt"
	"text/tabwriter"

	"amazetimes/internal/usecase/content"

	"github.com/spf13/cobra"
)

func newPartiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parties",
		Short: "Inspect the party table",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List parties in the display language",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r := a.resolver(ctx)
			return a.withService(ctx, func(svc *content.Service) error {
				parties, err := svc.ListParties(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tCOLOR\tFOUNDED")
				for _, p := range parties {
					founded := "-"
					if p.FoundedYear != nil {
						founded = r.Founded(*p.FoundedYear)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Slug, r.Pick(p), p.Color, founded)
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}
