// Package cli contains the terminal views of the SimuOrg client. Each
// command is a page: entering it mounts a fresh fetch/upload state machine,
// leaving it closes the machine so late settlements are ignored.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"simuorg/internal/client/api"
	"simuorg/internal/client/config"
	"simuorg/internal/client/models"
	"simuorg/internal/client/session"
	"simuorg/internal/client/tokenstore"
	"simuorg/internal/logging"
)

// gateway is the slice of the API client the views use. Tests substitute a
// fake.
type gateway interface {
	Authenticate(ctx context.Context, creds models.Credentials) (models.UserProfile, string, error)
	Register(ctx context.Context, reg models.Registration) error
	FetchEmployees(ctx context.Context) ([]models.Employee, error)
	FetchSimPolicies(ctx context.Context) ([]string, error)
	UploadDataset(ctx context.Context, filename string, file io.Reader) error
}

type App struct {
	config  *config.Config
	session *session.Service
	gw      gateway
	store   tokenstore.Store
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires the client together: token store, session (rehydrated before
// any request can go out), gateway.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NopLogger{}
	}

	store, err := tokenstore.OpenSQLite(ctx, c.TokenStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	sess := session.New(store, log)
	if err := sess.Restore(ctx); err != nil {
		log.Warn(ctx, "failed to restore session", "error", err)
	}

	gw := api.New(c.APIBaseURL, c.RequestTimeout, sess, log)

	return &App{
		config:  c,
		session: sess,
		gw:      gw,
		store:   store,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// status is the prompt decoration; it reflects the session reactively, the
// terminal stand-in for a nav bar toggling Login/Logout.
func (a *App) status() string {
	user, ok := a.session.CurrentUser()
	if !ok {
		return "anonymous"
	}
	if user.Email == "" {
		return "authenticated"
	}
	return user.Email
}
