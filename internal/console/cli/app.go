// Package cli is the terminal surface of the console: a cobra command tree
// for one-shot use and an interactive REPL for browsing sessions. Both
// drive the same App methods; all state lives in the session store and the
// per-view controllers underneath.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/pz-dev/bibliocli/internal/console/api"
	"github.com/pz-dev/bibliocli/internal/console/catalog"
	"github.com/pz-dev/bibliocli/internal/console/config"
	"github.com/pz-dev/bibliocli/internal/console/listview"
	"github.com/pz-dev/bibliocli/internal/console/models"
	"github.com/pz-dev/bibliocli/internal/console/session"
	"github.com/pz-dev/bibliocli/internal/logging"
)

// Session is the slice of the session store the cli uses.
type Session interface {
	Init(ctx context.Context) error
	Current() *models.User
	LoggedIn() bool
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Logout() error
	ToggleFavorite(ctx context.Context, bookID string) error
	UpdateProfile(ctx context.Context, p session.ProfilePatch) (*models.User, error)
	Claims() (session.TokenClaims, bool)
}

// Catalog is the slice of the catalog service the cli uses.
type Catalog interface {
	Browse() *listview.Controller[models.Book]
	Book(ctx context.Context, id string) (models.Book, error)
	Rent(ctx context.Context, book *models.Book, userID string) (models.Order, error)
	Return(ctx context.Context, order *models.Order) (models.Book, error)
	Orders(ctx context.Context, userID string) (active, history []catalog.OrderView, err error)
	Favorites(ctx context.Context, ids []string) ([]models.Book, error)
}

// Admin is the slice of the api client behind the admin commands.
type Admin interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User, password string) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch map[string]any) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetBook(ctx context.Context, id string) (models.Book, error)
	CreateBook(ctx context.Context, b models.Book) (models.Book, error)
	UpdateBook(ctx context.Context, id string, patch map[string]any) (models.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// App carries the wired services plus the I/O streams every command reads
// from and writes to.
type App struct {
	cfg     *config.Config
	session Session
	catalog Catalog
	admin   Admin
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// current catalog view for the stateful REPL commands (page, search,
	// sort). Lazily created, detached when the REPL exits.
	view *listview.Controller[models.Book]
}

// NewApp wires the console: credential file, session store, api client and
// catalog service. The session store is the client's token source and its
// unauthorized handler, so any 401 anywhere clears the credential.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}

	cred, err := session.NewCredentialFile(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(cred, log)

	client := api.New(cfg.BaseURL,
		api.WithTokenSource(store),
		api.WithUnauthorizedHandler(store.Invalidate),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff),
		api.WithLogger(log),
	)
	store.Bind(client)

	return &App{
		cfg:     cfg,
		session: store,
		catalog: catalog.NewService(client, log),
		admin:   client,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Init restores a persisted session, if any. A rejected credential is not
// an error; the user simply starts logged out.
func (a *App) Init(ctx context.Context) error {
	return a.session.Init(ctx)
}

// currentView returns the catalog controller for the interactive session,
// creating it on first use with the configured page size.
func (a *App) currentView() *listview.Controller[models.Book] {
	if a.view == nil {
		a.view = a.catalog.Browse()
		q := listview.DefaultQuery()
		if a.cfg != nil && a.cfg.PageLimit > 0 {
			q.Limit = a.cfg.PageLimit
			q.Page = 1
		}
		a.view.SetQuery(q)
	}
	return a.view
}

// requireLogin returns the identity or ErrNotLoggedIn.
func (a *App) requireLogin() (*models.User, error) {
	u := a.session.Current()
	if u == nil {
		return nil, session.ErrNotLoggedIn
	}
	return u, nil
}

// requireAdmin returns the identity when it has the admin role.
func (a *App) requireAdmin() (*models.User, error) {
	u, err := a.requireLogin()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, api.ErrForbidden
	}
	return u, nil
}
