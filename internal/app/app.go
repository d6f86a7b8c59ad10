package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"giftvault/internal/alerting"
	"giftvault/internal/alerts"
	"giftvault/internal/cache"
	"giftvault/internal/config"
	"giftvault/internal/fetcher"
	"giftvault/internal/kvstore"
	"giftvault/internal/ledger"
	"giftvault/internal/prefs"
	"giftvault/internal/quote"
	"giftvault/internal/ranking"
	"giftvault/internal/rates"
	"giftvault/internal/scheduler"
	"giftvault/internal/server"
	"giftvault/internal/service"
	"giftvault/internal/storage"
	"giftvault/internal/withdrawal"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newIndexFetcher composes the coin-price-index sources: on-chain oracle
// first, HTTP gateway as fallback. With neither configured the index pins
// to the baseline, which keeps effective rates equal to the stored rates.
func (a *App) newIndexFetcher() fetcher.IndexFetcher {
	var sources []fetcher.IndexFetcher

	if a.Config.Index.Chain.RPCURL != "" {
		sources = append(sources, fetcher.NewChain(fetcher.ChainOptions{
			RPCURL:        a.Config.Index.Chain.RPCURL,
			OracleAddress: a.Config.Index.Chain.OracleAddress,
			Timeout:       a.Config.Index.Chain.RequestTimeout,
		}, a.Logger))
	}
	if a.Config.Index.Gateway.BaseURL != "" {
		sources = append(sources, fetcher.NewGateway(fetcher.GatewayOptions{
			BaseURL:   a.Config.Index.Gateway.BaseURL,
			Timeout:   a.Config.Index.Gateway.RequestTimeout,
			UserAgent: a.Config.Index.Gateway.UserAgent,
		}, a.Logger))
	}

	switch len(sources) {
	case 0:
		a.Logger.Warn().Msg("no index source configured; pinning index to baseline")
		return &fetcher.Static{Value: a.Config.Index.Baseline}
	case 1:
		return sources[0]
	default:
		return &fetcher.Fallback{Primary: sources[0], Secondary: sources[1]}
	}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) openKV() (kvstore.Store, error) {
	kv, err := kvstore.NewFileStore(a.Config.Ledger.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	return kv, nil
}

// core bundles the wired domain components shared by commands.
type core struct {
	kv        kvstore.Store
	tables    *rates.Store
	sell      *service.Sell
	ledger    *ledger.Ledger
	alerts    *alerts.Manager
	prefs     *prefs.Store
	ranker    *ranking.Engine
	estimator *withdrawal.Estimator
	index     fetcher.IndexFetcher
}

func (a *App) buildCore(quoteStore quote.Store) (*core, error) {
	kv, err := a.openKV()
	if err != nil {
		return nil, err
	}

	tables, err := rates.NewStore(a.Config.Rates)
	if err != nil {
		return nil, fmt.Errorf("build rate tables: %w", err)
	}

	if quoteStore == nil {
		quoteStore = quote.NewMemoryStore()
	}

	index := a.newIndexFetcher()
	rateSrc := quote.NewConfigRates(a.Config.Rates.Active)
	engine := quote.NewEngine(tables, rateSrc, index, quoteStore, a.Config.Quotes.TTL, a.Logger)

	log := ledger.New(kv, a.Config.Ledger.MaxEntries, a.Config.Ledger.IDPrefix, a.Logger)

	return &core{
		kv:        kv,
		tables:    tables,
		sell:      service.NewSell(engine, tables, log, a.Logger),
		ledger:    log,
		alerts:    alerts.NewManager(kv, a.Logger),
		prefs:     prefs.NewStore(kv, a.Logger),
		ranker:    ranking.NewEngine(tables),
		estimator: withdrawal.NewEstimator(withdrawal.Window{Min: a.Config.Withdrawal.MinWait, Max: a.Config.Withdrawal.MaxWait}),
		index:     index,
	}, nil
}

// Run executes the long-running alert watch service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; alert auditing disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watcher.Interval,
		AlignToStart: a.Config.Watcher.AlignToBucket,
		StartupDelay: a.Config.Watcher.StartupDelay,
	}, a.Logger)

	var events storage.AlertEventStore
	if store != nil {
		events = store
	}

	watch := service.NewWatch(a.Config, sched, c.index, c.tables, c.alerts, c.prefs, events, a.newNotifier(), a.Logger)

	a.Logger.Info().Msg("starting alert watch service")
	err = watch.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch service terminated with error")
		return err
	}

	a.Logger.Info().Msg("alert watch service stopped")
	return nil
}

// Serve runs the local HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var quoteStore quote.Store
	if store != nil {
		quoteStore = store
	}

	c, err := a.buildCore(quoteStore)
	if err != nil {
		return err
	}

	sessions, err := cache.New(a.Config.Cache.MaxItems)
	if err != nil {
		return fmt.Errorf("build session cache: %w", err)
	}
	defer sessions.Close()

	handler := server.NewHandler(c.sell, c.tables, c.ranker, c.ledger, c.alerts, c.prefs, c.estimator, sessions, a.Logger)
	return server.Start(ctx, a.Config.Server.Addr, a.Config.Server.ShutdownTimeout, server.NewRouter(handler), a.Logger)
}

// ExportOptions hold parameters for exporting quote history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}

// SimulateOptions configure the alert simulation.
type SimulateOptions struct {
	Index int64
}
