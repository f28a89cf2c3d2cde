package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tripspend/internal/api"
	"tripspend/internal/config"
	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/session"
	"tripspend/internal/storage"
	"tripspend/internal/workflow"
)

// The API client must satisfy the workflow's collaborator ports.
var (
	_ workflow.Extractor     = (*api.Client)(nil)
	_ workflow.ExpenseWriter = (*api.Client)(nil)
)

// App holds the wired-up application. Commands hang off it so tests can
// construct one over fakes and captured output.
type App struct {
	cfg      *config.Config
	logger   *applog.Logger
	store    *storage.Store
	sessions *session.Store
	client   *api.Client

	stdin   io.Reader
	scanner *bufio.Scanner // lazily built over stdin, shared across prompts
	stdout  io.Writer
	stderr  io.Writer
}

// NewApp wires the full application from validated configuration. The
// session store restores any persisted session from the local store, so a
// login survives process restarts.
func NewApp(cfg *config.Config, logger *applog.Logger, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	store, err := InitStore(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	sessions, err := session.NewStore(store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client, err := api.New(api.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.HTTPTimeout,
		OCRTimeout: cfg.OCRTimeout,
		OCRMethod:  cfg.OCRMethod,
		OCRModel:   cfg.OCRModel,
		Logger:     logger.WithComponent(applog.ComponentAPI),
	}, sessions)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// The backend rejecting the token anywhere lands here; by then the
	// store is already empty, this is the one-time notification.
	sessionLog := logger.WithComponent(applog.ComponentSession)
	sessions.OnClear(func() {
		sessionLog.Warn("session cleared")
	})

	return &App{
		cfg:      cfg,
		logger:   logger.WithComponent(applog.ComponentCLI),
		store:    store,
		sessions: sessions,
		client:   client,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Close releases the local store.
func (a *App) Close() error {
	return a.store.Close()
}

// Run dispatches a subcommand. The returned error is already user-facing;
// callers only need to print it and choose an exit code.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return flag.ErrHelp
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "register":
		err = a.cmdRegister(ctx, rest)
	case "logout":
		err = a.cmdLogout(rest)
	case "whoami":
		err = a.cmdWhoami(rest)
	case "trips":
		err = a.cmdTrips(ctx, rest)
	case "expenses":
		err = a.cmdExpenses(ctx, rest)
	case "receipt":
		err = a.cmdReceipt(ctx, rest)
	case "refresh":
		err = a.cmdRefresh(ctx, rest)
	case "settings":
		err = a.cmdSettings(ctx, rest)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return a.describe(err)
}

// describe rewrites boundary errors into actionable messages.
func (a *App) describe(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrAuthRequired) {
		return fmt.Errorf("not logged in (run 'tripspend login')")
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var ce *core.CollaboratorError
	if errors.As(err, &ce) {
		return errors.New(ce.UserMessage())
	}
	return err
}

func (a *App) usage() {
	fmt.Fprint(a.stderr, `Usage: tripspend <command> [flags]

Commands:
  login                      log in and store the session
  register                   create an account
  logout                     discard the stored session
  whoami                     show the logged-in user
  trips list                 list trips
  trips add <name> [desc]    create a trip
  trips rm <id>              delete a trip
  expenses list [-trip NAME] list expenses, optionally for one trip
  expenses summary [-trip NAME] per-type cost totals
  expenses add               enter an expense by hand
  expenses edit <id>         edit an existing expense
  expenses rm <id>           delete an expense
  receipt <file>             extract an expense from a receipt and submit it
  refresh                    re-fetch trips and expenses into the local cache
  settings set-key K=V ...   store provider API keys on the backend

Environment is read with the TRIPSPEND_ prefix; a .env file is loaded if present.
`)
}
