package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/images"
	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/storage"
)

var (
	ErrNoSession           = errors.New("no current session")
	ErrEmptyTheme          = errors.New("theme is required")
	ErrUnknownVariation    = errors.New("unknown variation")
	ErrNoTitles            = errors.New("generate titles before continuing")
	ErrTitleNotFound       = errors.New("title not found")
	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleValidated    = errors.New("article is validated; unvalidate it before regenerating")
	ErrNotEditing          = errors.New("article is not being edited")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNotAnImage          = errors.New("upload is not an image")
	ErrLogoTooLarge        = errors.New("logo too large (max 5MB)")
)

// RedirectError is returned when a controller operation is attempted while
// the transition table would send the user elsewhere. It is not a failure to
// display; callers navigate to Decision.Step.
type RedirectError struct {
	Decision Decision
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s (%s guard)", e.Decision.Step, e.Decision.Guard)
}

// Gateway is the subset of the generation gateway the controllers call
type Gateway interface {
	GenerateThemeVariations(ctx context.Context, req gateway.ThemeRequest) (*gateway.ThemeResult, error)
	GenerateLogos(ctx context.Context, req gateway.LogoRequest) (*gateway.LogoResult, error)
	GenerateTitles(ctx context.Context, req gateway.TitlesRequest) (*gateway.TitlesResult, error)
	GenerateArticle(ctx context.Context, req gateway.ArticleRequest) (*gateway.ArticleResult, error)
	GenerateImage(ctx context.Context, req gateway.ImageRequest) (*gateway.ImageResult, error)
	GenerateContentImage(ctx context.Context, req gateway.ImageRequest) (*gateway.ImageResult, error)
	Translate(ctx context.Context, req gateway.TranslateRequest) (*gateway.TranslationResult, error)
	ExportWordPress(ctx context.Context, req gateway.ExportRequest) (*gateway.ExportResult, error)
	PublishWordPress(ctx context.Context, req gateway.ExportRequest) (*gateway.PublishResult, error)
}

// Options are the wizard defaults seeded into each new session
type Options struct {
	PurgeOnHome     bool
	DefaultLanguage string
	DefaultTone     string
	ArticleLength   int
	DetailLevel     int
	// Illustrate requests a content image for each generated article
	Illustrate bool
}

func (o Options) withDefaults() Options {
	if lang, err := CanonicalLanguage(o.DefaultLanguage); err == nil {
		o.DefaultLanguage = lang
	} else {
		o.DefaultLanguage = "fr"
	}
	if o.DefaultTone == "" {
		o.DefaultTone = "standard"
	}
	if o.ArticleLength <= 0 {
		o.ArticleLength = 1500
	}
	if o.DetailLevel <= 0 {
		o.DetailLevel = 3
	}
	return o
}

type editKey struct {
	sessionID string
	index     int
}

// Wizard wires the step controllers to the session store and the gateway.
// The store is the only source of truth; every operation re-reads it and
// returns the merged state it wrote.
type Wizard struct {
	store   storage.Store
	images  storage.ImageStore
	gateway Gateway
	fetcher *images.Fetcher
	opts    Options

	mu    sync.Mutex
	edits map[editKey]string
}

func New(backend storage.Backend, gw Gateway, fetcher *images.Fetcher, opts Options) *Wizard {
	if fetcher == nil {
		fetcher = images.NewFetcher()
	}
	return &Wizard{
		store:   backend,
		images:  backend,
		gateway: gw,
		fetcher: fetcher,
		opts:    opts.withDefaults(),
		edits:   make(map[editKey]string),
	}
}

func (w *Wizard) Home() *HomeController {
	return &HomeController{w: w}
}

func (w *Wizard) Logos() *LogosController {
	return &LogosController{w: w}
}

func (w *Wizard) Content() *ContentController {
	return &ContentController{w: w}
}

func (w *Wizard) Articles() *ArticlesController {
	return &ArticlesController{w: w}
}

func (w *Wizard) Article(index int) *ArticleDetailController {
	return &ArticleDetailController{w: w, index: index}
}

// Store exposes the session store, e.g. for listing sessions
func (w *Wizard) Store() storage.Store {
	return w.store
}

// Images exposes the image store
func (w *Wizard) Images() storage.ImageStore {
	return w.images
}

// Fetcher exposes the image fetcher used to resolve image references
func (w *Wizard) Fetcher() *images.Fetcher {
	return w.fetcher
}

// CurrentSession returns the current session, or ErrNoSession
func (w *Wizard) CurrentSession(ctx context.Context) (*models.Session, error) {
	s, err := w.loadCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if !s.HasSession() {
		return nil, ErrNoSession
	}
	return s, nil
}

// loadCurrent returns the current session, or nil when there is no pointer
func (w *Wizard) loadCurrent(ctx context.Context) (*models.Session, error) {
	id, ok, err := w.store.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return w.store.Read(ctx, id)
}

// Navigate evaluates the transition table for target and persists the
// selected-variation fallback when it fires. Entering Home purges stored
// sessions when configured to.
func (w *Wizard) Navigate(ctx context.Context, target Step, index int) (Decision, *models.Session, error) {
	if target == StepHome && w.opts.PurgeOnHome {
		if err := w.ClearSessions(ctx); err != nil {
			return Decision{}, nil, fmt.Errorf("failed to purge sessions: %w", err)
		}
		slog.Debug("Purged stored sessions on home")
		return Decision{Requested: StepHome, Step: StepHome}, nil, nil
	}

	session, err := w.loadCurrent(ctx)
	if err != nil {
		return Decision{}, nil, err
	}

	decision := Evaluate(session, target, index)
	if decision.AutoSelected != "" {
		session, err = w.store.Write(ctx, session.ID, models.Patch{SelectedVariation: models.Ptr(decision.AutoSelected)})
		if err != nil {
			return Decision{}, nil, fmt.Errorf("failed to persist variation selection: %w", err)
		}
		slog.Info("Auto-selected first variation", "session_id", session.ID, "variation_id", decision.AutoSelected)
	}
	if decision.Redirected {
		slog.Debug("Navigation redirected", "requested", target, "step", decision.Step, "guard", decision.Guard)
	}
	return decision, session, nil
}

// DeleteSession removes one stored session along with its edit buffers
func (w *Wizard) DeleteSession(ctx context.Context, id string) error {
	if err := w.store.Delete(ctx, id); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for key := range w.edits {
		if key.sessionID == id {
			delete(w.edits, key)
		}
	}
	return nil
}

// ClearSessions removes every stored session and all edit buffers
func (w *Wizard) ClearSessions(ctx context.Context) error {
	if err := w.store.ClearAll(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.edits)
	return nil
}

// enter runs the guards for step and returns the session, or a
// RedirectError when the guards send the user elsewhere.
func (w *Wizard) enter(ctx context.Context, step Step, index int) (*models.Session, error) {
	decision, session, err := w.Navigate(ctx, step, index)
	if err != nil {
		return nil, err
	}
	if decision.Redirected {
		return nil, &RedirectError{Decision: decision}
	}
	return session, nil
}

func (w *Wizard) editBuffer(sessionID string, index int) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf, ok := w.edits[editKey{sessionID, index}]
	return buf, ok
}

func (w *Wizard) setEditBuffer(sessionID string, index int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.edits[editKey{sessionID, index}] = text
}

func (w *Wizard) clearEditBuffer(sessionID string, index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.edits, editKey{sessionID, index})
}
