package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sitewizard/sitewizard/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export articles, datasets and WordPress sites",
	}
	cmd.AddCommand(newExportArticleCmd())
	cmd.AddCommand(newExportDatasetCmd())
	cmd.AddCommand(newExportWordPressCmd())
	return cmd
}

func newExportArticleCmd() *cobra.Command {
	var format, out, sessionID string

	cmd := &cobra.Command{
		Use:   "article <index>",
		Short: "Export one article of the current session as JSON, PDF or HTML",
		Args:  cobra.ExactArgs(1),
		Example: `  sitewizard export article 0 --format pdf
  sitewizard export article 2 --format html --out brewing.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid article index %q: %w", args[0], err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.useSession(cmd, sessionID); err != nil {
				return err
			}

			detail := a.wizard.Article(index)
			var write func(io.Writer) (string, error)
			switch format {
			case "json":
				write = func(w io.Writer) (string, error) { return detail.ExportJSON(cmd.Context(), w) }
			case "pdf":
				write = func(w io.Writer) (string, error) { return detail.ExportPDF(cmd.Context(), w) }
			case "html":
				write = func(w io.Writer) (string, error) { return detail.ExportHTML(cmd.Context(), w) }
			default:
				return fmt.Errorf("unsupported format: %s (supported: json, pdf, html)", format)
			}
			return writeExport(cmd, out, write)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, pdf or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: derived from the article title)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session to export from (becomes the current session)")
	return cmd
}

func newExportDatasetCmd() *cobra.Command {
	var out, sessionID string

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Export every article of a session to Parquet or JSONL",
		Example: `  sitewizard export dataset --out articles.parquet
  sitewizard export dataset --session 6f1c2d0e-... --out articles.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var ids []string
			if sessionID != "" {
				ids = append(ids, sessionID)
			}
			session, err := loadSession(cmd, a, ids)
			if err != nil {
				return err
			}

			rows := export.DatasetRows(session)
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			if err := export.WriteDataset(file, export.DatasetFormat(out), rows); err != nil {
				return err
			}
			slog.Info("Dataset exported", "session_id", session.ID, "rows", len(rows), "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d articles to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "articles.jsonl", "Output file (.parquet or .jsonl)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session to export (default: current)")
	return cmd
}

func newExportWordPressCmd() *cobra.Command {
	var out, sessionID string
	var publish bool

	cmd := &cobra.Command{
		Use:   "wordpress [variation-id]",
		Short: "Export a variation as a WordPress site, or publish it",
		Args:  cobra.MaximumNArgs(1),
		Example: `  sitewizard export wordpress 2 --out site.zip
  sitewizard export wordpress --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.useSession(cmd, sessionID); err != nil {
				return err
			}
			variationID := ""
			if len(args) == 1 {
				variationID = args[0]
			}

			if publish {
				result, err := a.wizard.Content().PublishWordPress(cmd.Context(), variationID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published: %s\n", result.Message)
				return nil
			}

			result, err := a.wizard.Content().ExportWordPress(cmd.Context(), variationID)
			if err != nil {
				return err
			}
			defer result.Body.Close()
			return writeExport(cmd, out, func(w io.Writer) (string, error) {
				_, err := io.Copy(w, result.Body)
				return result.Filename, err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: name sent by the gateway)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session to export from (becomes the current session)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish to WordPress instead of downloading")
	return cmd
}

// useSession makes id the current session when given
func (a *app) useSession(cmd *cobra.Command, id string) error {
	if id == "" {
		return nil
	}
	if _, err := loadSession(cmd, a, []string{id}); err != nil {
		return err
	}
	return a.wizard.Store().SetCurrent(cmd.Context(), id)
}

// writeExport writes to a temporary file and renames it to out, or to the
// name the exporter suggests when out is empty.
func writeExport(cmd *cobra.Command, out string, write func(io.Writer) (string, error)) error {
	tmp, err := os.CreateTemp(".", ".sitewizard-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	name, err := write(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if out == "" {
		out = name
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
