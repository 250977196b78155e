package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitewizard/sitewizard/internal/wizard"
)

func newRunCmd() *cobra.Command {
	var (
		theme        string
		variations   int
		titlesFor    string
		customPrompt string
		color        string
		tone         string
		additional   string
		avoid        string
		withLogos    bool
		withArticles bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole wizard non-interactively",
		Long: `Runs every wizard step against the generation gateway in one go:
theme variations, optionally logos, titles for one variation, and all
of its articles. The resulting session becomes the current session.`,
		Example: `  # Generate three concepts and the articles of the first one
  sitewizard run --theme "artisan coffee"

  # Pick the second variation and skip logos
  sitewizard run --theme "artisan coffee" --variations 3 --titles-for 2 --logos=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(theme) == "" {
				return errors.New("--theme is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			w := a.wizard
			out := cmd.OutOrStdout()

			session, err := w.Home().Start(ctx, wizard.StartRequest{
				Theme:           theme,
				VariationCount:  variations,
				CustomPrompt:    customPrompt,
				ColorPreference: color,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Session %s: %d variations\n", session.ID, len(session.Variations))
			for _, v := range session.Variations {
				fmt.Fprintf(out, "  [%s] %s (%s)\n", v.ID, v.Title, v.Style)
			}

			if withLogos {
				_, progress, err := w.Logos().GenerateAll(ctx, logProgress("logos"))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Logos: %d/%d\n", progress.Completed, progress.Total)
			}

			if titlesFor != "" {
				if _, err := w.Logos().SelectVariation(ctx, titlesFor); err != nil {
					return err
				}
			}
			if tone != "" || additional != "" || avoid != "" {
				if _, err := w.Content().SetContext(ctx, wizard.GenerationContext{Tone: tone, AdditionalContext: additional, AvoidContext: avoid}); err != nil {
					return err
				}
			}
			session, err = w.Content().GenerateTitles(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Titles for variation %s:\n", session.SelectedVariation)
			for i, t := range session.SelectedTitles() {
				fmt.Fprintf(out, "  %d. %s\n", i, t)
			}

			if !withArticles {
				return nil
			}
			if _, _, err := w.Content().Continue(ctx); err != nil {
				return err
			}
			session, progress, err := w.Articles().GenerateAll(ctx, logProgress("articles"))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Articles: %d/%d (%d%%)\n", progress.Completed, progress.Total, progress.Percent)
			for _, e := range progress.Errors {
				fmt.Fprintf(out, "  article %s failed: %s\n", e.Item, e.Error)
			}
			fmt.Fprintf(out, "Done. Export with: sitewizard export dataset --session %s\n", session.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Site theme (required)")
	cmd.Flags().IntVar(&variations, "variations", wizard.DefaultVariationCount, "Number of site variations to generate")
	cmd.Flags().StringVar(&titlesFor, "titles-for", "", "Variation id to generate titles and articles for (default: first)")
	cmd.Flags().StringVar(&customPrompt, "prompt", "", "Extra instructions for the theme variations")
	cmd.Flags().StringVar(&color, "color", "", "Color preference for the variations")
	cmd.Flags().StringVar(&tone, "tone", "", "Article tone (default from WIZARD_TONE)")
	cmd.Flags().StringVar(&additional, "context", "", "Additional context for titles and articles")
	cmd.Flags().StringVar(&avoid, "avoid", "", "Topics to avoid")
	cmd.Flags().BoolVar(&withLogos, "logos", true, "Generate a logo for every variation")
	cmd.Flags().BoolVar(&withArticles, "articles", true, "Generate the articles after the titles")

	return cmd
}

func logProgress(step string) wizard.ProgressFunc {
	return func(p wizard.Progress) {
		slog.Info("Progress", "step", step, "completed", p.Completed, "total", p.Total, "percent", p.Percent, "errors", len(p.Errors))
	}
}
