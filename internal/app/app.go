package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "cardhub/docs"
	"cardhub/internal/clock"
	"cardhub/internal/config"
	"cardhub/internal/handlers"
	"cardhub/internal/logger"
	"cardhub/internal/metrics"
	"cardhub/internal/middleware"
	"cardhub/internal/notify"
	"cardhub/internal/pdf"
	"cardhub/internal/realtime"
	"cardhub/internal/repositories"
	"cardhub/internal/repositories/memory"
	"cardhub/internal/routes"
	"cardhub/internal/services"
	"cardhub/internal/views"
)

// App is the wired HTTP service.
type App struct {
	Router   *gin.Engine
	Registry *prometheus.Registry
	log      *logger.Logger
	closers  []func() error
}

type storage struct {
	clients   repositories.ClientRepository
	cards     repositories.CardRepository
	contracts repositories.ContractRepository
	tx        repositories.TxRunner
}

// Run loads the config at configPath and serves until SIGINT or SIGTERM.
func Run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("[app] listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// New wires storage, services, notifiers and the router for cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	return build(ctx, cfg, log, clock.Real(), nil)
}

func build(ctx context.Context, cfg *config.Config, log *logger.Logger, clk clock.Clock, notifier notify.Notifier) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{log: log}

	store, err := a.openStorage(ctx, cfg.Database)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.Registry)

	if notifier == nil {
		notifier = buildNotifier(cfg, log)
	}
	hub := realtime.NewHub(log)
	notifier = notify.Multi{notifier, hub}

	// === Services ===
	lifecycle := services.NewLifecycleManager(services.LifecycleDeps{
		Clients:   store.clients,
		Cards:     store.cards,
		Contracts: store.contracts,
		Tx:        store.tx,
		Clock:     clk,
		Metrics:   m,
		Notifier:  notifier,
		Log:       log,
	})
	validator := services.NewValidator(store.clients)
	relationships := services.NewRelationshipValidator(store.clients, store.cards, clk)

	clientService := services.NewClientService(store.clients, validator, lifecycle)
	cardService := services.NewCardService(store.cards, validator, lifecycle, clk)
	contractService := services.NewContractService(store.contracts, validator, relationships, lifecycle, clk)

	// === Handlers ===
	h := routes.Handlers{
		Clients:   handlers.NewClientHandler(clientService, log),
		Cards:     handlers.NewCardHandler(cardService, log),
		Contracts: handlers.NewContractHandler(contractService, pdf.NewDocumentGenerator(cfg.PDF.FontPath), clk, log),
		Events:    handlers.NewEventsHandler(hub),
	}

	// === Gin ===
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		gin.Recovery(),
		middleware.CORS(cfg.Server.CORSOrigins),
	)
	if cfg.Server.Pages {
		router.SetHTMLTemplate(views.Load())
		h.Pages = handlers.NewPageHandler(clientService, cardService, contractService, log)
	}

	a.Router = routes.SetupRoutes(router, h, routes.Options{
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		Gatherer:  a.Registry,
		Swagger:   cfg.Server.Swagger,
	})
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.DatabaseConfig) (storage, error) {
	switch cfg.Driver {
	case "memory":
		s := memory.New()
		a.log.Warn("[app] using in-memory storage, data is lost on restart")
		return storage{clients: s.Clients(), cards: s.Cards(), contracts: s.Contracts(), tx: s}, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return storage{}, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return storage{}, fmt.Errorf("ping database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := repositories.EnsureSchema(ctx, db); err != nil {
				return storage{}, err
			}
		}
		return storage{
			clients:   repositories.NewClientRepository(db),
			cards:     repositories.NewCardRepository(db),
			contracts: repositories.NewContractRepository(db),
			tx:        repositories.NewSQLTxRunner(db),
		}, nil
	}
	return storage{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// buildNotifier enables each channel that has credentials configured.
func buildNotifier(cfg *config.Config, log *logger.Logger) notify.Notifier {
	var out notify.Multi
	if cfg.Email.SMTPHost != "" {
		out = append(out, notify.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		))
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("[app] telegram notifications disabled", "error", err)
		} else {
			out = append(out, tg)
		}
	}
	if len(cfg.SMS.Recipients) > 0 {
		out = append(out, notify.NewSMSService(cfg.SMS.APIKey, cfg.SMS.SenderID, cfg.SMS.Recipients, cfg.SMS.DryRun, log))
	}
	if len(out) == 0 {
		return notify.Nop{}
	}
	return out
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("[app] close failed", "error", err)
		}
	}
	a.closers = nil
}
