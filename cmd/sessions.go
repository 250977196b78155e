package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/wizard"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage stored sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	cmd.AddCommand(newSessionsClearCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.wizard.Store().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTHEME\tVARIATIONS\tARTICLES\tCREATED\t")
			for _, s := range sessions {
				id := s.ID
				if s.Current {
					id += " *"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t\n", id, s.Theme, s.Variations, s.Articles, s.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [session-id]",
		Short: "Show a session (default: the current one)",
		Args:  cobra.MaximumNArgs(1),
		Example: `  sitewizard sessions show
  sitewizard sessions show 6f1c2d0e-... --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := loadSession(cmd, a, args)
			if err != nil {
				return err
			}
			return writeSession(cmd.OutOrStdout(), session, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	return cmd
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>...",
		Short: "Delete the given sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			for _, id := range args {
				if err := a.wizard.DeleteSession(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete session %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}

func newSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.wizard.ClearSessions(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All sessions deleted")
			return nil
		},
	}
}

// loadSession reads the session named in args, or the current one
func loadSession(cmd *cobra.Command, a *app, args []string) (*models.Session, error) {
	if len(args) == 0 {
		return a.wizard.CurrentSession(cmd.Context())
	}
	session, err := a.wizard.Store().Read(cmd.Context(), args[0])
	if err != nil {
		return nil, err
	}
	if !session.HasSession() {
		return nil, fmt.Errorf("session %s not found", args[0])
	}
	return session, nil
}

// SessionReport is the human-readable view of a session
type SessionReport struct {
	ID                string            `yaml:"id"`
	Theme             string            `yaml:"theme"`
	Topic             string            `yaml:"topic,omitempty"`
	SelectedVariation string            `yaml:"selectedvariation,omitempty"`
	Tone              string            `yaml:"tone,omitempty"`
	CreatedAt         time.Time         `yaml:"createdat"`
	Variations        []VariationReport `yaml:"variations"`
	Articles          []ArticleReport   `yaml:"articles,omitempty"`
}

type VariationReport struct {
	ID     string   `yaml:"id"`
	Title  string   `yaml:"title"`
	Style  string   `yaml:"style"`
	Logo   string   `yaml:"logo,omitempty"`
	Titles []string `yaml:"titles,omitempty"`
}

type ArticleReport struct {
	Index     int    `yaml:"index"`
	Title     string `yaml:"title"`
	Language  string `yaml:"language"`
	Name      string `yaml:"languagename,omitempty"`
	Validated bool   `yaml:"validated"`
	Words     int    `yaml:"words"`
	Sources   int    `yaml:"sources"`
}

func newSessionReport(s *models.Session) SessionReport {
	report := SessionReport{
		ID:                s.ID,
		Theme:             s.Theme,
		Topic:             s.Topic,
		SelectedVariation: s.SelectedVariation,
		Tone:              s.Tone,
		CreatedAt:         s.CreatedAt,
	}
	for _, v := range s.Variations {
		vr := VariationReport{ID: v.ID, Title: v.Title, Style: v.Style, Titles: s.Titles[v.ID]}
		if logo, ok := s.Logos[v.ID]; ok {
			vr.Logo = logo.URL
			if logo.BlobID != "" {
				vr.Logo = "blob:" + logo.BlobID
			}
		}
		report.Variations = append(report.Variations, vr)
	}

	indexes := make([]int, 0, len(s.Articles))
	for i := range s.Articles {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)
	for _, i := range indexes {
		a := s.Articles[i]
		report.Articles = append(report.Articles, ArticleReport{
			Index:     i,
			Title:     a.Title,
			Language:  a.CurrentLanguage,
			Name:      wizard.LanguageName(a.CurrentLanguage),
			Validated: a.IsValidated,
			Words:     len(strings.Fields(a.Content)),
			Sources:   len(a.Sources),
		})
	}
	return report
}

func writeSession(w io.Writer, s *models.Session, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml", "":
		data, err := yaml.Marshal(newSessionReport(s))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", format)
	}
}
