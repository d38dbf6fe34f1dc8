// Package config reads the storefront module settings from the custom.* namespace of the
// go-bricks application config, so config.yaml, config.<env>.yaml and CUSTOM_* environment
// variables apply with the framework's precedence.
package config

import (
	"fmt"
	"time"

	gbconfig "github.com/gaborage/go-bricks/config"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-bricks-storefront/internal/modules/shared/secrets"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

// Sink types.
const (
	SinkLog  = "log"
	SinkEdge = "edge"
	SinkAMQP = "amqp"
)

// Overflow policies of the outbound queue.
const (
	OverflowDropNew    = "drop-new"
	OverflowDropOldest = "drop-oldest"
)

// Sources for the user directory, the catalog and the edge credentials.
const (
	SourceStatic   = "static"
	SourceDatabase = "database"
	SourceAWS      = "aws"
)

type SiteConfig struct {
	Section    string `koanf:"custom.site.section"`
	Language   string `koanf:"custom.site.language"`
	Currency   string `koanf:"custom.site.currency"`
	Name       string `koanf:"custom.site.name"`
	Brand      string `koanf:"custom.site.brand"`
	PagePrefix string `koanf:"custom.site.page.prefix"`
}

// Site converts the section into the domain value stamped on events.
func (c SiteConfig) Site() domain.Site {
	return domain.Site{
		Section:    c.Section,
		Language:   c.Language,
		Currency:   c.Currency,
		Name:       c.Name,
		Brand:      c.Brand,
		PagePrefix: c.PagePrefix,
	}
}

type TelemetryConfig struct {
	Sink             string        `koanf:"custom.telemetry.sink"`
	FingerprintMode  string        `koanf:"custom.telemetry.fingerprint.mode"`
	QueueSize        int           `koanf:"custom.telemetry.queue.size"`
	QueueWorkers     int           `koanf:"custom.telemetry.queue.workers"`
	QueueOverflow    string        `koanf:"custom.telemetry.queue.overflow"`
	SubmitTimeout    time.Duration `koanf:"custom.telemetry.submit.timeout"`
	ShutdownTimeout  time.Duration `koanf:"custom.telemetry.shutdown.timeout"`
	PayloadNamespace string        `koanf:"custom.telemetry.payload.namespace"`
	StatsInterval    time.Duration `koanf:"custom.telemetry.stats.interval"`

	// DataLayerRetention caps the in-memory data layer and its debug view.
	DataLayerRetention int `koanf:"custom.telemetry.datalayer.retention"`
}

type EdgeConfig struct {
	Endpoint          string `koanf:"custom.telemetry.edge.endpoint"`
	CredentialsSource string `koanf:"custom.telemetry.edge.credentials.source"`
	DatastreamID      string `koanf:"custom.telemetry.edge.datastream.id"`
	APIKey            string `koanf:"custom.telemetry.edge.api.key"`
	OrgID             string `koanf:"custom.telemetry.edge.org.id"`
}

// AMQPConfig names the exchange; the broker connection is the application's messaging.broker.
type AMQPConfig struct {
	Exchange string `koanf:"custom.telemetry.amqp.exchange"`
}

type StorefrontConfig struct {
	DirectorySource   string        `koanf:"custom.storefront.directory.source"`
	DirectoryDatabase string        `koanf:"custom.storefront.directory.database"`
	CatalogSource     string        `koanf:"custom.storefront.catalog.source"`
	SessionTTL        time.Duration `koanf:"custom.storefront.session.ttl"`
	SessionMax        int           `koanf:"custom.storefront.session.max"`
	MerchantIDPrefix  string        `koanf:"custom.storefront.merchant.prefix"`
	GuestIDPrefix     string        `koanf:"custom.storefront.guest.prefix"`
	CartIDPrefix      string        `koanf:"custom.storefront.cart.prefix"`
	OrderIDPrefix     string        `koanf:"custom.storefront.order.prefix"`
}

// Config is the complete module configuration.
type Config struct {
	Site       SiteConfig
	Telemetry  TelemetryConfig
	Edge       EdgeConfig
	AMQP       AMQPConfig
	AWSSecrets secrets.AWSSecretsConfig
	Storefront StorefrontConfig
}

func defaults() map[string]any {
	return map[string]any{
		"custom.site.section":     "duke-apparel",
		"custom.site.language":    "en-IN",
		"custom.site.currency":    "INR",
		"custom.site.name":        "duke.com",
		"custom.site.brand":       "Duke",
		"custom.site.page.prefix": "duke",

		"custom.telemetry.sink":              SinkLog,
		"custom.telemetry.fingerprint.mode":  "sha256",
		"custom.telemetry.queue.size":        256,
		"custom.telemetry.queue.workers":     2,
		"custom.telemetry.queue.overflow":    OverflowDropNew,
		"custom.telemetry.submit.timeout":    "5s",
		"custom.telemetry.shutdown.timeout":  "10s",
		"custom.telemetry.payload.namespace": "storefront",
		"custom.telemetry.stats.interval":    "1m",

		"custom.telemetry.datalayer.retention": 1000,

		"custom.telemetry.edge.endpoint":           "https://edge.adobedc.net",
		"custom.telemetry.edge.credentials.source": SourceStatic,
		"custom.telemetry.amqp.exchange":           "storefront.telemetry",

		"custom.aws.secrets.prefix":         "storefront",
		"custom.aws.secrets.cache.ttl":      "5m",
		"custom.aws.secrets.cache.max.size": 16,

		"custom.storefront.directory.source":   SourceStatic,
		"custom.storefront.directory.database": "crm",
		"custom.storefront.catalog.source":     SourceStatic,
		"custom.storefront.session.ttl":        "30m",
		"custom.storefront.session.max":        10000,
		"custom.storefront.merchant.prefix":    "DUKE-USR-",
		"custom.storefront.guest.prefix":       "DUKE-GUEST-",
		"custom.storefront.cart.prefix":        "DUKE-CART-",
		"custom.storefront.order.prefix":       "DUKE-",
	}
}

// Load overlays the custom.* tree of the application config onto the module defaults.
// A nil or unloaded application config yields the defaults.
func Load(app *gbconfig.Config) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	if custom := app.Custom(); len(custom) > 0 {
		if err := k.Load(confmap.Provider(map[string]any{"custom": custom}, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load custom config: %w", err)
		}
	}

	var cfg Config
	conf := koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}
	targets := []any{&cfg.Site, &cfg.Telemetry, &cfg.Edge, &cfg.AMQP, &cfg.AWSSecrets, &cfg.Storefront}
	for _, target := range targets {
		if err := k.UnmarshalWithConf("", target, conf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the module cannot run with.
func (c *Config) Validate() error {
	switch c.Telemetry.Sink {
	case SinkLog, SinkEdge, SinkAMQP:
	default:
		return fmt.Errorf("invalid telemetry sink %q", c.Telemetry.Sink)
	}
	switch c.Telemetry.QueueOverflow {
	case OverflowDropNew, OverflowDropOldest:
	default:
		return fmt.Errorf("invalid queue overflow policy %q", c.Telemetry.QueueOverflow)
	}
	if c.Telemetry.QueueSize < 1 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.Telemetry.QueueWorkers < 1 {
		return fmt.Errorf("queue workers must be positive")
	}
	if c.Telemetry.DataLayerRetention < 1 {
		return fmt.Errorf("data layer retention must be positive")
	}
	if c.Telemetry.SubmitTimeout <= 0 {
		return fmt.Errorf("submit timeout must be positive")
	}
	if c.Telemetry.Sink == SinkAMQP && c.AMQP.Exchange == "" {
		return fmt.Errorf("amqp sink requires custom.telemetry.amqp.exchange")
	}
	if c.Telemetry.Sink == SinkEdge {
		switch c.Edge.CredentialsSource {
		case SourceStatic:
			if c.Edge.DatastreamID == "" {
				return fmt.Errorf("edge sink requires custom.telemetry.edge.datastream.id")
			}
		case SourceAWS:
		default:
			return fmt.Errorf("invalid edge credentials source %q", c.Edge.CredentialsSource)
		}
	}
	for name, source := range map[string]string{
		"directory": c.Storefront.DirectorySource,
		"catalog":   c.Storefront.CatalogSource,
	} {
		if source != SourceStatic && source != SourceDatabase {
			return fmt.Errorf("invalid %s source %q", name, source)
		}
	}
	if c.Storefront.SessionTTL <= 0 || c.Storefront.SessionMax < 1 {
		return fmt.Errorf("session ttl and max must be positive")
	}
	return nil
}
