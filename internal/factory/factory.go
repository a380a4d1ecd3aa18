// Package factory wires the application from its configuration.
package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api"
	"github.com/mcoot/arkham-companion/internal/config"
	"github.com/mcoot/arkham-companion/internal/dependencies/clock"
	"github.com/mcoot/arkham-companion/internal/dependencies/random"
	"github.com/mcoot/arkham-companion/internal/files"
	"github.com/mcoot/arkham-companion/internal/mail"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
	"github.com/mcoot/arkham-companion/internal/notify/redisbus"
	"github.com/mcoot/arkham-companion/internal/services/auth"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
	"github.com/mcoot/arkham-companion/internal/services/player"
	"github.com/mcoot/arkham-companion/internal/services/session"
	"github.com/mcoot/arkham-companion/internal/services/token"
	"github.com/mcoot/arkham-companion/internal/sse"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/mcoot/arkham-companion/internal/storage/memory"
	"github.com/mcoot/arkham-companion/internal/storage/postgres"
)

// App contains all wired application components
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	Storage storage.Storage
	Files   files.FileStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Mailer mail.Mailer

	// Push
	HubManager *sse.HubManager
	Notifier   notify.Notifier

	// Services
	AuthService      *auth.Service
	CardService      *catalog.CardService
	CharacterService *catalog.CharacterService
	Importer         *catalog.Importer
	SessionService   *session.Service
	PlayerService    *player.Service

	uploads http.Handler
	janitor *sse.Janitor
	relay   *redisbus.Relay
	cancel  context.CancelFunc
	closers []func() error
}

// Option overrides a dependency New would otherwise build from the configuration
type Option func(*options)

type options struct {
	storage storage.Storage
	files   files.FileStore
	clock   clock.Clock
	random  random.Random
	mailer  mail.Mailer
}

// WithStorage uses the given storage instead of the configured driver
func WithStorage(st storage.Storage) Option { return func(o *options) { o.storage = st } }

// WithFiles uses the given file store instead of the configured driver
func WithFiles(fs files.FileStore) Option { return func(o *options) { o.files = fs } }

// WithClock replaces the real clock
func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithRandom replaces the crypto random source
func WithRandom(r random.Random) Option { return func(o *options) { o.random = r } }

// WithMailer replaces the configured mail transport
func WithMailer(m mail.Mailer) Option { return func(o *options) { o.mailer = m } }

// New creates a new application with all dependencies wired.
// Close must be called to release connections and background workers.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.Storage = o.storage
	if app.Storage == nil {
		if app.Storage, err = app.openStorage(ctx); err != nil {
			return nil, err
		}
	}

	app.Files = o.files
	if app.Files == nil {
		if app.Files, err = app.openFiles(ctx); err != nil {
			return nil, err
		}
	}

	app.Clock = o.clock
	if app.Clock == nil {
		app.Clock = clock.New()
	}
	app.Random = o.random
	if app.Random == nil {
		app.Random = random.New()
	}
	app.Mailer = o.mailer
	if app.Mailer == nil {
		app.Mailer = app.newMailer()
	}

	app.HubManager = sse.NewHubManager(logger)
	if app.Notifier, err = app.newNotifier(ctx); err != nil {
		return nil, err
	}
	if app.janitor, err = sse.NewJanitor(app.HubManager, cfg.Notify.CleanupSchedule, logger); err != nil {
		return nil, fmt.Errorf("hub janitor: %w", err)
	}
	app.closers = append(app.closers, func() error {
		app.HubManager.CloseAll()
		return nil
	})

	app.wireServices()
	return app, nil
}

func (a *App) openStorage(ctx context.Context) (storage.Storage, error) {
	switch a.Config.Database.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		st, err := postgres.Open(a.Config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		if a.Config.Database.AutoMigrate {
			if err := st.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return st, nil
	default:
		return nil, fmt.Errorf("invalid database driver %q", a.Config.Database.Driver)
	}
}

func (a *App) openFiles(ctx context.Context) (files.FileStore, error) {
	fc := a.Config.Files
	switch fc.Driver {
	case "s3":
		return files.NewS3(ctx, files.S3Config{
			Bucket:    fc.S3.Bucket,
			Region:    fc.S3.Region,
			Endpoint:  fc.S3.Endpoint,
			PublicURL: fc.S3.PublicURL,
		})
	default:
		local, err := files.NewLocal(fc.Dir, fc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("local files: %w", err)
		}
		a.uploads = local.Handler()
		return local, nil
	}
}

func (a *App) newMailer() mail.Mailer {
	mc := a.Config.Mail
	if mc.Driver == "smtp" {
		return mail.NewSMTP(mail.SMTPConfig{
			Host:     mc.Host,
			Port:     mc.Port,
			Username: mc.Username,
			Password: mc.Password,
			From:     mc.From,
		})
	}
	return mail.NewLog(a.Logger)
}

// newNotifier fans events out to the local hubs, or through redis when it is configured
func (a *App) newNotifier(ctx context.Context) (notify.Notifier, error) {
	local := sse.NewBroadcaster(a.HubManager, a.Logger)
	rc := a.Config.Redis
	if rc.URL == "" {
		return notify.NewDispatcher(a.Logger, local), nil
	}

	busCfg := redisbus.DefaultConfig()
	busCfg.URL = rc.URL
	busCfg.PoolSize = rc.PoolSize
	busCfg.ChannelPrefix = rc.ChannelPrefix
	bus, err := redisbus.New(busCfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("redis bus: %w", err)
	}
	a.closers = append(a.closers, bus.Close)

	relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	relay, err := bus.Subscribe(relayCtx, local)
	if err != nil {
		return nil, err
	}
	a.relay = relay
	return notify.NewDispatcher(a.Logger, bus), nil
}

func (a *App) wireServices() {
	cfg := a.Config
	tokens := token.NewGenerator(a.Random)

	catalogCfg := catalog.Config{Languages: a.Languages(), MaxFileSize: cfg.Files.MaxSize}

	a.AuthService = auth.New(a.Storage, a.Clock, tokens, a.Mailer, auth.Config{
		JWTSecret:   cfg.Auth.JWTSecret,
		JWTExpiry:   cfg.Auth.JWTExpiry,
		TokenLength: cfg.Auth.TokenLength,
		AppURL:      cfg.Auth.AppURL,
	}, a.Logger)
	a.CardService = catalog.NewCardService(a.Storage, a.Files, a.Random, a.Clock, catalogCfg, a.Logger)
	a.CharacterService = catalog.NewCharacterService(a.Storage, a.Files, a.Random, a.Clock, catalogCfg, a.Logger)
	a.Importer = catalog.NewImporter(a.CardService, a.CharacterService, a.Logger)
	a.PlayerService = player.New(a.Storage, a.Clock, a.Random, a.Notifier, player.Config{MaxPlayers: cfg.Game.MaxPlayers}, a.Logger)
	a.SessionService = session.New(a.Storage, a.PlayerService, tokens, a.Clock, a.Notifier, session.Config{TokenLength: cfg.Game.SessionTokenLength}, a.Logger)
}

// Languages returns the configured locale set
func (a *App) Languages() model.Languages {
	languages := model.Languages{App: model.Locale(a.Config.I18n.AppLanguage)}
	for _, l := range a.Config.I18n.AvailableLanguages {
		languages.Available = append(languages.Available, model.Locale(l))
	}
	return languages
}

// Router builds the HTTP handler for the application
func (a *App) Router() http.Handler {
	var health func(context.Context) error
	if p, ok := a.Storage.(interface{ Ping(context.Context) error }); ok {
		health = p.Ping
	}

	return api.NewRouter(api.RouterConfig{
		Logger:           a.Logger,
		Languages:        a.Languages(),
		MaxFileSize:      a.Config.Files.MaxSize,
		AuthService:      a.AuthService,
		CardService:      a.CardService,
		CharacterService: a.CharacterService,
		SessionService:   a.SessionService,
		PlayerService:    a.PlayerService,
		Players:          a.Storage,
		HubManager:       a.HubManager,
		HealthCheck:      health,
		Uploads:          a.uploads,
		UploadsPrefix:    a.Config.Files.BaseURL,
	})
}

// Start launches background workers
func (a *App) Start() {
	a.janitor.Start()
}

// Close stops background workers and releases connections
func (a *App) Close() error {
	if a.janitor != nil {
		a.janitor.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	if a.relay != nil {
		errs = append(errs, a.relay.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
