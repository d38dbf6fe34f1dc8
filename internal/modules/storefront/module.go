// Package storefront wires the storefront instrumentation core: call sites, identity
// stitching and dual-channel dispatch to the data layer and the remote telemetry sink.
package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/gaborage/go-bricks-storefront/internal/modules/shared/secrets"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/catalog"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/config"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/debug"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/dispatch"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/fingerprint"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/handlers"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/identity"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/job"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/observer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/sink"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/tracking"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/database"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/messaging"
	"github.com/gaborage/go-bricks/server"
)

// Module owns the storefront event pipeline for the lifetime of the application
type Module struct {
	deps     *app.ModuleDeps
	cfg      *config.Config
	logger   logger.Logger
	queue    *dispatch.Queue
	cancel   context.CancelFunc
	observer *observer.Observer
	sessions *session.Registry
	handler  *handlers.StorefrontHandler
	debug    *debug.Handler
	statsJob *job.TelemetryStatsJob
	closers  []io.Closer
}

// NewModule creates a new storefront module instance
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name for registration
func (m *Module) Name() string {
	return "storefront"
}

// Init loads the module configuration and builds the pipeline
func (m *Module) Init(deps *app.ModuleDeps) error {
	m.deps = deps
	m.logger = deps.Logger.WithFields(map[string]any{
		"module": "storefront",
	})

	m.logger.Info().Msg("Initializing storefront module")

	cfg, err := config.Load(deps.Config)
	if err != nil {
		return fmt.Errorf("failed to load storefront config: %w", err)
	}
	m.cfg = cfg
	site := cfg.Site.Site()

	fp, err := fingerprint.New(cfg.Telemetry.FingerprintMode)
	if err != nil {
		return err
	}

	out, err := m.buildSink(context.Background())
	if err != nil {
		return err
	}

	m.queue = dispatch.NewQueue(out, dispatch.QueueOptions{
		Size:          cfg.Telemetry.QueueSize,
		Workers:       cfg.Telemetry.QueueWorkers,
		Overflow:      cfg.Telemetry.QueueOverflow,
		SubmitTimeout: cfg.Telemetry.SubmitTimeout,
	}, m.logger)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.queue.Start(ctx)

	dataLayer := datalayer.New(datalayer.WithRetention(cfg.Telemetry.DataLayerRetention))
	dispatcher := dispatch.NewDispatcher(dataLayer, m.queue, site, cfg.Telemetry.PayloadNamespace, m.logger)
	m.observer = observer.New(dataLayer, site.Language, observer.WithRetention(cfg.Telemetry.DataLayerRetention))

	directory, provider := m.buildSources()
	store := identity.NewStore(directory, fp, dispatcher, identity.Options{
		MerchantIDPrefix: cfg.Storefront.MerchantIDPrefix,
		GuestIDPrefix:    cfg.Storefront.GuestIDPrefix,
	}, m.logger)
	tracker := tracking.NewTracker(dispatcher, store, provider, fp, site, cfg.Storefront.OrderIDPrefix)

	m.sessions = session.NewRegistry(cfg.Storefront.SessionTTL, cfg.Storefront.SessionMax, cfg.Storefront.CartIDPrefix, m.logger)
	m.sessions.OnExpire(func(id string) { dataLayer.Forget(id) })
	m.handler = handlers.NewStorefrontHandler(tracker, m.sessions, provider, site, m.logger)
	m.debug = debug.NewHandler(m.observer, m.queue, dataLayer, m.logger)
	m.statsJob = &job.TelemetryStatsJob{Queue: m.queue, Observer: m.observer}

	m.logger.Info().
		Str("sink", out.Name()).
		Str("fingerprint", cfg.Telemetry.FingerprintMode).
		Str("directory", cfg.Storefront.DirectorySource).
		Str("catalog", cfg.Storefront.CatalogSource).
		Int("queueSize", cfg.Telemetry.QueueSize).
		Msg("Storefront module initialized successfully")

	return nil
}

func (m *Module) buildSink(ctx context.Context) (sink.Sink, error) {
	switch m.cfg.Telemetry.Sink {
	case config.SinkEdge:
		var credentials secrets.CredentialSource
		if m.cfg.Edge.CredentialsSource == config.SourceAWS {
			store, err := secrets.NewAWSCredentialStore(ctx, m.logger, m.cfg.AWSSecrets)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge credential store: %w", err)
			}
			m.closers = append(m.closers, store)
			credentials = store
		} else {
			credentials = secrets.NewStaticCredentialStore(secrets.EdgeCredentials{
				DatastreamID: m.cfg.Edge.DatastreamID,
				APIKey:       m.cfg.Edge.APIKey,
				OrgID:        m.cfg.Edge.OrgID,
			})
		}
		return sink.NewEdgeSink(m.cfg.Edge.Endpoint, nil, credentials, m.logger), nil
	case config.SinkAMQP:
		if m.deps.Messaging == nil {
			return nil, fmt.Errorf("amqp telemetry sink requires application messaging")
		}
		return sink.NewAMQPSink(m.deps.Messaging, m.cfg.AMQP.Exchange, m.logger), nil
	default:
		return sink.NewLogSink(m.logger), nil
	}
}

// buildSources picks the user directory and the catalog provider. The CRM directory
// lives in a named database; the catalog uses the default one.
func (m *Module) buildSources() (identity.Directory, catalog.Provider) {
	var directory identity.Directory = identity.NewStaticDirectory(identity.SeedUsers())
	if m.cfg.Storefront.DirectorySource == config.SourceDatabase {
		name := m.cfg.Storefront.DirectoryDatabase
		directory = identity.NewSQLDirectory(func(ctx context.Context) (database.Interface, error) {
			return m.deps.DBByName(ctx, name)
		})
	}

	var provider catalog.Provider = catalog.NewStatic(catalog.DefaultSeed)
	if m.cfg.Storefront.CatalogSource == config.SourceDatabase {
		provider = catalog.NewSQL(m.deps.DB)
	}
	return directory, provider
}

// RegisterRoutes registers the storefront and debug HTTP endpoints
func (m *Module) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	m.handler.RegisterRoutes(hr, r)
	m.debug.RegisterRoutes(hr, r)
}

// DeclareMessaging declares the telemetry exchange when the AMQP sink is selected
func (m *Module) DeclareMessaging(decls *messaging.Declarations) {
	if m.cfg.Telemetry.Sink != config.SinkAMQP {
		return
	}
	sink.DeclareAMQP(decls, m.cfg.AMQP.Exchange)
}

func (m *Module) RegisterJobs(scheduler app.JobRegistrar) error {
	return scheduler.FixedRate("telemetry-stats", m.statsJob, m.cfg.Telemetry.StatsInterval)
}

// Shutdown drains the outbound queue within the configured timeout and releases the sinks
func (m *Module) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Telemetry.ShutdownTimeout)
	defer cancel()

	if err := m.queue.Close(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Outbound telemetry queue did not drain before shutdown")
	}
	m.cancel()

	stats := m.queue.Stats()
	m.logger.Info().
		Int("delivered", int(stats.Delivered)).
		Int("failed", int(stats.Failed)).
		Int("dropped", int(stats.Dropped)).
		Msg("Outbound telemetry queue closed")

	m.observer.Close()
	m.sessions.Close()

	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
