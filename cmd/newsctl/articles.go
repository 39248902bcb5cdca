package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/i18n"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/editor"

	"github.com/spf13/cobra"
)

// withService opens the store for the duration of fn.
func (a *app) withService(ctx context.Context, fn func(*content.Service) error) error {
	store, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(content.NewService(store.Articles, store.Parties))
}

func newArticlesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article"},
		Short:   "List, create and delete articles",
	}
	cmd.AddCommand(
		newArticlesListCmd(a),
		newArticlesShowCmd(a),
		newArticlesCreateCmd(a),
		newArticlesDeleteCmd(a),
	)
	return cmd
}

func newArticlesListCmd(a *app) *cobra.Command {
	var (
		status   string
		asJSON   bool
		breaking bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every article, drafts included",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && !entity.Status(status).Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			ctx := cmd.Context()
			r := a.resolver(ctx)
			return a.withService(ctx, func(svc *content.Service) error {
				all, err := svc.ListAll(ctx)
				if err != nil {
					return err
				}
				out := make([]*entity.Article, 0, len(all))
				for _, art := range all {
					if status != "" && art.Status != entity.Status(status) {
						continue
					}
					if breaking && !art.IsBreaking {
						continue
					}
					out = append(out, art)
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				}
				return printArticles(cmd.OutOrStdout(), r, out)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only articles with this status (published or draft)")
	cmd.Flags().BoolVar(&breaking, "breaking", false, "only breaking articles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printArticles(w io.Writer, r i18n.Resolver, articles []*entity.Article) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tPARTY\tSLUG\tTITLE")
	for _, art := range articles {
		party := "-"
		if art.Party != nil {
			party = r.Pick(art.Party)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			art.ID, art.Status, r.CategoryLabel(string(art.Category)), party, art.Slug, r.Field(art, "Title"))
	}
	return tw.Flush()
}

func newArticlesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one article in the display language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := a.resolver(ctx)
			return a.withService(ctx, func(svc *content.Service) error {
				art, err := svc.GetArticle(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, r.Field(art, "Title"))
				fmt.Fprintf(w, "%s | %s | %s\n", art.Slug, art.Status, r.CategoryLabel(string(art.Category)))
				if art.Party != nil {
					fmt.Fprintln(w, r.Pick(art.Party))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, r.Field(art, "Content"))
				return nil
			})
		},
	}
}

func newArticlesCreateCmd(a *app) *cobra.Command {
	form := editor.DefaultForm()
	var (
		party    string
		category string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article through the editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withService(ctx, func(svc *content.Service) error {
				f := form
				f.Category = entity.Category(category)
				f.Status = entity.Status(status)
				if party != "" {
					p, err := svc.GetPartyBySlug(ctx, party)
					if err != nil {
						return err
					}
					if p == nil {
						return fmt.Errorf("unknown party %q", party)
					}
					f.PartyID = &p.ID
				}

				out, err := editor.New(svc, nil, nil, a.logger).SubmitTo(ctx, "", f, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", out.Article.ID, out.Article.Slug)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.TitleEN, "title-en", "", "English title")
	flags.StringVar(&form.TitleTA, "title-ta", "", "Tamil title")
	flags.StringVar(&form.ContentEN, "content-en", "", "English body")
	flags.StringVar(&form.ContentTA, "content-ta", "", "Tamil body")
	flags.StringVar(&form.FeaturedImage, "image", "", "featured image URL")
	flags.BoolVar(&form.IsBreaking, "breaking", false, "mark as breaking news")
	flags.BoolVar(&form.IsFeatured, "featured", false, "mark as featured")
	flags.StringVar(&party, "party", "", "party slug")
	flags.StringVar(&category, "category", string(entity.CategoryGeneral), "category")
	flags.StringVar(&status, "status", string(entity.StatusPublished), "published or draft")
	return cmd
}

func newArticlesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an article",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withService(ctx, func(svc *content.Service) error {
				ed := editor.New(svc, nil, nil, a.logger)
				if _, err := ed.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
