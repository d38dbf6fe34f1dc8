// Package secrets resolves the credentials the telemetry sinks need to reach the edge collector.
package secrets

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialsNotFound is returned when no credentials are configured for the edge collector.
var ErrCredentialsNotFound = errors.New("edge credentials not found")

// EdgeCredentials identify the datastream the edge collector routes events to.
type EdgeCredentials struct {
	DatastreamID string `json:"datastreamId"`
	APIKey       string `json:"apiKey"`
	OrgID        string `json:"orgId"`
}

// Validate checks the credentials carry a datastream.
func (c EdgeCredentials) Validate() error {
	if c.DatastreamID == "" {
		return errors.New("datastream ID cannot be empty")
	}
	return nil
}

// CredentialSource supplies edge credentials to the sinks.
type CredentialSource interface {
	EdgeCredentials(ctx context.Context) (EdgeCredentials, error)
}

type AWSSecretsConfig struct {
	Prefix      string        `json:"prefix" koanf:"custom.aws.secrets.prefix"`
	Cache       time.Duration `json:"cache" koanf:"custom.aws.secrets.cache.ttl"`
	MaxSize     int           `json:"max" koanf:"custom.aws.secrets.cache.max.size"`
	EndpointURL string        `json:"endpoint_url" koanf:"custom.aws.endpoint.url"`
}
