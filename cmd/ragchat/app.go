package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/sandevgo/ragchat/internal/config"
	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/providers/backend"
	"github.com/sandevgo/ragchat/internal/service/assistant"
	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/orchestrator"
	"github.com/sandevgo/ragchat/internal/service/session"
	"github.com/sandevgo/ragchat/internal/storage/sqlite"
	"github.com/sandevgo/ragchat/pkg/log"
)

// errReported ends a command with a non-zero exit after it already printed
// the failure itself.
var errReported = errors.New("reported")

// App is the wired client: storage, session, backend clients and the
// orchestrator every front-end goes through.
type App struct {
	cfg       *config.AppConfig
	clientCfg *config.ClientConfig
	db        *sql.DB

	history   *sqlite.History
	auth      *session.Manager
	orch      *orchestrator.Orchestrator
	assistant *assistant.Assistant
	router    *command.Router
}

func NewApp(ctx context.Context) (*App, error) {
	logger := log.FromCtx(ctx)

	appCfg := config.NewAppConfig(ctx)
	clientCfg, err := config.NewClientConfig()
	if err != nil {
		return nil, fmt.Errorf("%w (run 'ragchat setup' first)", err)
	}

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	history := sqlite.NewHistory(db)
	sess := session.New()
	clients := backend.NewClients(ctx, clientCfg, sess)
	manager := session.NewManager(clients.Auth, sqlite.NewCredentials(db), sess, clientCfg.GetBaseURL())

	if ok, err := manager.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to restore credential")
	} else if !ok {
		logger.Debug().Msg("no stored credential, run 'ragchat login'")
	}

	orch := orchestrator.New(clients.Chat, clients.Upload)
	orch.OnUploadAcknowledged(func(ctx context.Context, ev orchestrator.UploadAcknowledged) {
		log.FromCtx(ctx).Info().
			Str("file", ev.FileName).
			Str("namespace", ev.Namespace).
			Str("document_id", ev.Ack.DocumentID).
			Msg("Document uploaded. Indexing in progress.")
	})
	orch.Subscribe(func(slot core.Slot, state core.RequestState) {
		logger.Debug().Str("slot", string(slot)).Bool("pending", state.Pending).Msg("request state changed")
	})

	return &App{
		cfg:       appCfg,
		clientCfg: clientCfg,
		db:        db,
		history:   history,
		auth:      manager,
		orch:      orch,
		assistant: assistant.New(orch, history),
		router:    command.New(command.NewCommands(history, manager, orch)),
	}, nil
}

// Conversation starts a fresh conversation in the configured namespace,
// honouring the --namespace flag.
func (a *App) Conversation() *core.Conversation {
	ns := a.cfg.GetNamespace()
	if namespace != "" {
		ns = namespace
	}
	return &core.Conversation{Namespace: ns, UserID: a.cfg.GetUserID()}
}

func (a *App) Close() error {
	return a.db.Close()
}

// withApp builds the logger and App for a one-shot command and tears both
// down after. Logs go to stderr so the command output stays pipeable.
func withApp(ctx context.Context, run func(ctx context.Context, app *App) error) error {
	ctx, flushLog := setupLogger(ctx, os.Stderr)
	defer flushLog()

	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return run(ctx, app)
}
