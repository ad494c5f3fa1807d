package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"beacon-dashboard/internal/config"
	"beacon-dashboard/internal/dashboard"
	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/events"
	"beacon-dashboard/internal/gateway"
	"beacon-dashboard/internal/httpapi"
	"beacon-dashboard/internal/logging"
	"beacon-dashboard/internal/monday"
	"beacon-dashboard/internal/normalize"
	"beacon-dashboard/internal/secrets"
	"beacon-dashboard/internal/store"
)

const (
	shutdownTimeout = 5 * time.Second
	// token changes made with `beacon token set` are picked up within this window
	keyringRecheck = time.Minute
)

// App is one fully wired process: gateway, dashboard poller and HTTP API.
type App struct {
	Cfg      config.Config
	Hub      *events.Hub
	DB       *store.DB
	FetchLog *store.FetchLog
	Gateway  *gateway.Service
	Poller   *dashboard.Poller
	Handler  http.Handler

	logger *log.Logger
}

// Options overrides pieces of the wiring. The zero value is production.
type Options struct {
	ConfigPath string
	Token      gateway.TokenFunc
	Logger     *log.Logger
}

// NewGateway builds the survey gateway for cfg without any HTTP around it.
func NewGateway(cfg config.Config, token gateway.TokenFunc, rec gateway.Recorder, hub events.Publisher, logger *log.Logger) (*gateway.Service, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if token == nil {
		token = secrets.TokenSource{
			Account:  secrets.MondayKeyringAccount(cfg.Monday.BoardID),
			Fallback: cfg.Monday.APIToken,
		}.Cached(keyringRecheck)
	}

	client := monday.New(monday.Config{
		Endpoint:   cfg.Monday.Endpoint,
		APIVersion: cfg.Monday.APIVersion,
		BoardID:    cfg.Monday.BoardID,
		PageLimit:  cfg.Monday.PageLimit,
		ItemsPath:  cfg.Monday.ItemsPath,
		Timeout:    cfg.UpstreamTimeout(),
	}, monday.NewLimiter(cfg.Monday.RequestsPerSecond, 1), logging.New("monday"))

	var drop *domain.Catalog
	if cfg.Gateway.DropUnknownOpportunities {
		drop = catalog
	}

	return gateway.New(gateway.Options{
		Fetcher: client,
		Token:   token,
		Cache:   gateway.NewCache(cfg.TTL()),
		Fields: normalize.Fields{
			Opportunities: cfg.Columns.Opportunities,
			Company:       cfg.Columns.Company,
			Consent:       cfg.Columns.Consent,
			ConsentTokens: cfg.Columns.ConsentTokens,
		},
		Catalog: drop,
		Log:     rec,
		Hub:     hub,
		Logger:  logger,
	}), nil
}

func Build(cfg config.Config, o Options) (*App, error) {
	logger := o.Logger
	if logger == nil {
		logger = logging.New("server")
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}

	dsn := cfg.History.DSN
	if dsn != store.MemoryDSN && !filepath.IsAbs(dsn) && cfg.App.DataDir != "" {
		dsn = filepath.Join(cfg.App.DataDir, dsn)
	}
	db, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("fetch log: %w", err)
	}
	if err := store.Migrate(db.Pool); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fetch log migrate: %w", err)
	}
	fetchLog := store.NewFetchLog(db.Pool, cfg.History.Keep)

	hub := events.NewHub()

	gw, err := NewGateway(cfg, o.Token, fetchLog, hub, logging.New("gateway"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	poller := dashboard.NewPoller(dashboard.PollerOptions{
		Source:   dashboard.NewGatewayClient(cfg.GatewayURL(), 30*time.Second),
		Catalog:  catalog,
		Interval: cfg.PollInterval(),
		Hub:      hub,
		Logger:   logging.New("dashboard"),
	})

	renderer, err := dashboard.NewRenderer(dashboard.PageOptions{
		Title:        cfg.Dashboard.Title,
		Subtitle:     cfg.Dashboard.Subtitle,
		FormURL:      cfg.Dashboard.FormURL,
		PollInterval: cfg.PollInterval(),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("templates: %w", err)
	}

	handler := httpapi.NewRouter(httpapi.Deps{
		Gateway:    gw,
		Poller:     poller,
		Renderer:   renderer,
		FetchLog:   fetchLog,
		Hub:        hub,
		Config:     cfg,
		ConfigPath: o.ConfigPath,
		Logger:     logging.New("http"),
	})

	return &App{
		Cfg:      cfg,
		Hub:      hub,
		DB:       db,
		FetchLog: fetchLog,
		Gateway:  gw,
		Poller:   poller,
		Handler:  handler,
		logger:   logger,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Run serves HTTP and polls until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Cfg.App.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		// open SSE streams end when the group stops
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	a.logger.Printf("listening on http://%s (gateway=%s poll=%s)", ln.Addr(), a.Cfg.GatewayURL(), a.Cfg.PollInterval())

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.Poller.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Printf("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
