package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	finmind "github.com/set-night/finmind"
	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/handler"
	"github.com/set-night/finmind/internal/middleware"
	"github.com/set-night/finmind/internal/repository"
	"github.com/set-night/finmind/internal/server"
	"github.com/set-night/finmind/internal/service"
	"github.com/set-night/finmind/internal/storage"
	"github.com/set-night/finmind/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, transactions, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Initialize services
	chat := service.NewChatService(cfg)
	workspaces := service.NewWorkspaces(store, transactions, cfg.BackendURL)

	if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
		slog.Warn("chat provider is not configured, /api/chat will fail")
	}

	errCh := make(chan error, 2)
	running := 1
	go func() {
		errCh <- server.New(chat, cfg.AllowedOrigins).Run(ctx, fmt.Sprintf(":%d", cfg.Port))
	}()

	if cfg.BotEnabled() {
		running++
		go func() {
			errCh <- runBot(ctx, cfg, workspaces, chat)
		}()
	} else {
		slog.Info("BOT_TOKEN not set, telegram front end disabled")
	}

	// Either front end failing stops the other one.
	failed := false
	for ; running > 0; running-- {
		if err := <-errCh; err != nil {
			slog.Error("service stopped", "error", err)
			failed = true
			stop()
		}
	}
	if failed {
		closeStore()
		os.Exit(1)
	}

	// Graceful shutdown
	slog.Info("finmind stopped gracefully")
}

// openStore picks Postgres when DATABASE_URL is set. Otherwise session state goes
// to the JSON state file and transactions live in memory.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, service.TransactionRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		fileStore, err := storage.OpenFileStore(cfg.StateFile)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("using file state store", "path", cfg.StateFile)
		return fileStore, repository.NewMemoryTransactionStore(), func() {}, nil
	}

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// Run migrations
	migrationsFS, err := fs.Sub(finmind.MigrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("using postgres state store")
	return repository.NewKVStore(pool), repository.NewTransactionStore(pool), pool.Close, nil
}

func runBot(ctx context.Context, cfg *config.Config, workspaces *service.Workspaces, chat *service.ChatService) error {
	// Handler pointer for use in default handler closure
	var h *handler.Handler

	b, err := bot.New(cfg.BotToken,
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.WorkspaceLoader(workspaces),
			middleware.Logging(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleDefault(ctx, b, update)
		}),
	)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}

	h = handler.New(handler.Deps{
		Bot:        b,
		Cfg:        cfg,
		Workspaces: workspaces,
		Chat:       chat,
		TgLogger:   telegram.NewTelegramLogger(b, cfg),
	})
	h.Register()

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)
	slog.Info("bot stopped gracefully")
	return nil
}
