package main

import (
	"fmt"

	"amazetimes/internal/i18n"

	"github.com/spf13/cobra"
)

func newLangCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the display language",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored display language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := a.preferences(cmd.Context())
			if err != nil {
				return err
			}
			lang := prefs.Language()
			r := prefs.Resolver()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", lang, r.Text("English", "தமிழ்"))
			return nil
		},
	}

	set := &cobra.Command{
		Use:       "set <en|ta>",
		Short:     "Store the display language",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(i18n.English), string(i18n.Tamil)},
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := i18n.Parse(args[0])
			if err != nil {
				return err
			}
			prefs, err := a.preferences(cmd.Context())
			if err != nil {
				return err
			}
			if err := prefs.SetLanguage(cmd.Context(), lang); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "language set to %s\n", lang)
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
