package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/models"
)

// ArticlesController generates article bodies for the selected titles
type ArticlesController struct {
	w *Wizard
}

// GenerateArticle generates the article for title i of the selected
// variation, replacing any unvalidated article at that index.
func (c *ArticlesController) GenerateArticle(ctx context.Context, index int) (*models.Session, error) {
	s, err := c.w.enter(ctx, StepArticles, 0)
	if err != nil {
		return nil, err
	}
	article, err := c.generate(ctx, s, index)
	if err != nil {
		return nil, err
	}
	return c.w.saveArticle(ctx, s, index, article)
}

// GenerateAll generates every missing article in title order. Existing
// articles are left alone and count as completed.
func (c *ArticlesController) GenerateAll(ctx context.Context, onProgress ProgressFunc) (*models.Session, Progress, error) {
	s, err := c.w.enter(ctx, StepArticles, 0)
	if err != nil {
		return nil, Progress{}, err
	}

	titles := s.SelectedTitles()
	progress := newProgress(len(titles))
	for i := range titles {
		if _, ok := s.Article(i); ok {
			progress.succeed()
			progress.report(onProgress)
			continue
		}
		if err := ctx.Err(); err != nil {
			return s, *progress, err
		}

		article, err := c.generate(ctx, s, i)
		if err != nil {
			slog.Warn("Article generation failed", "session_id", s.ID, "index", i, "error", err)
			progress.fail(strconv.Itoa(i), err)
			progress.report(onProgress)
			continue
		}
		s, err = c.w.saveArticle(ctx, s, i, article)
		if err != nil {
			return nil, *progress, err
		}
		progress.succeed()
		progress.report(onProgress)
	}
	slog.Info("Article generation finished", "session_id", s.ID, "completed", progress.Completed, "total", progress.Total, "failed", len(progress.Errors))
	return s, *progress, nil
}

// Open hands over to the detail step for article i
func (c *ArticlesController) Open(ctx context.Context, index int) (Decision, *models.Session, error) {
	return c.w.Navigate(ctx, StepArticleDetail, index)
}

func (c *ArticlesController) generate(ctx context.Context, s *models.Session, index int) (models.Article, error) {
	titles := s.SelectedTitles()
	if index < 0 || index >= len(titles) {
		return models.Article{}, fmt.Errorf("%w: index %d", ErrTitleNotFound, index)
	}
	if existing, ok := s.Article(index); ok && existing.IsValidated {
		return models.Article{}, ErrArticleValidated
	}
	title := titles[index]

	slog.Info("Generating article", "session_id", s.ID, "index", index, "title", title)
	result, err := c.w.gateway.GenerateArticle(ctx, gateway.ArticleRequest{
		Title:             title,
		Subject:           topic(s),
		Tone:              s.Tone,
		AdditionalContext: s.AdditionalContext,
		AvoidContext:      s.AvoidContext,
	})
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to generate article: %w", err)
	}

	article := models.Article{
		Title:           title,
		Content:         result.Content,
		Sources:         result.Sources,
		CurrentLanguage: c.w.opts.DefaultLanguage,
	}

	imageURL := result.ImageURL
	if imageURL == "" && c.w.opts.Illustrate {
		imageURL = c.illustrate(ctx, s, index, title)
	}
	if imageURL != "" {
		ref, err := c.w.fetcher.Save(ctx, c.w.images, imageURL)
		if err != nil {
			slog.Warn("Failed to store article image", "session_id", s.ID, "index", index, "error", err)
		} else {
			article.Image = &ref
		}
	}
	return article, nil
}

// illustrate requests a content image; failures only cost the image
func (c *ArticlesController) illustrate(ctx context.Context, s *models.Session, index int, title string) string {
	result, err := c.w.gateway.GenerateContentImage(ctx, gateway.ImageRequest{
		Prompt:       defaultImagePrompt(title, topic(s)),
		Title:        title,
		SessionID:    s.ID,
		ArticleIndex: &index,
	})
	if err != nil {
		slog.Warn("Content image generation failed", "session_id", s.ID, "index", index, "error", err)
		return ""
	}
	return result.ImageURL
}

// topic is the article subject: the recorded topic, else the selected
// variation's title.
func topic(s *models.Session) string {
	if s.Topic != "" {
		return s.Topic
	}
	if v, ok := s.Variation(s.SelectedVariation); ok {
		return v.Title
	}
	return s.Theme
}

func defaultImagePrompt(title, topic string) string {
	return fmt.Sprintf("Illustration for an article titled %q about %s", title, topic)
}

// saveArticle writes article i and mirrors it into the selected variation's
// content. The mirror entry is found by the title article i had before this
// write, so a renamed title replaces its old entry instead of adding one.
func (w *Wizard) saveArticle(ctx context.Context, s *models.Session, index int, article models.Article) (*models.Session, error) {
	patch := models.Patch{Articles: map[int]models.Article{index: article}}
	previous := article.Title
	if existing, ok := s.Article(index); ok {
		previous = existing.Title
	}
	if variations, ok := syncVariationContent(s.Variations, s.SelectedVariation, previous, article); ok {
		patch.Variations = variations
	}
	updated, err := w.store.Write(ctx, s.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}
	return updated, nil
}

// syncVariationContent returns a copy of variations where the selected
// variation's content holds article. The entry titled previous is
// replaced, else the entry with the article's title, else it is appended.
// Other entries carrying the article's title are dropped.
func syncVariationContent(variations []models.Variation, selected, previous string, article models.Article) ([]models.Variation, bool) {
	i := slices.IndexFunc(variations, func(v models.Variation) bool { return v.ID == selected })
	if i < 0 {
		return nil, false
	}
	out := slices.Clone(variations)
	v := out[i]

	var articles []models.Article
	if v.Content != nil {
		articles = slices.Clone(v.Content.Articles)
	}
	j := slices.IndexFunc(articles, func(a models.Article) bool { return a.Title == previous })
	if j < 0 {
		j = slices.IndexFunc(articles, func(a models.Article) bool { return a.Title == article.Title })
	}

	content := &models.VariationContent{Articles: make([]models.Article, 0, len(articles)+1)}
	for k, a := range articles {
		switch {
		case k == j:
			content.Articles = append(content.Articles, article)
		case a.Title == article.Title:
		default:
			content.Articles = append(content.Articles, a)
		}
	}
	if j < 0 {
		content.Articles = append(content.Articles, article)
	}
	v.Content = content
	out[i] = v
	return out, true
}
