package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/gaborage/go-bricks-storefront/internal/modules/shared/cache"
	"github.com/gaborage/go-bricks/logger"
)

const edgeCredentialsCacheKey = "edge_credentials"

// SecretsManagerAPI defines the Secrets Manager operations used by the store.
// This allows for easy mocking and testing
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSCredentialStore reads the edge credentials from AWS Secrets Manager and caches them.
type AWSCredentialStore struct {
	client SecretsManagerAPI
	cache  *cache.Cache
	prefix string
	logger logger.Logger
}

// NewAWSCredentialStore creates a store backed by a Secrets Manager client built from the default AWS config.
func NewAWSCredentialStore(ctx context.Context, log logger.Logger, cfg AWSSecretsConfig) (*AWSCredentialStore, error) {
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("AWS Secrets Manager prefix cannot be empty")
	}

	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSCredentialStoreWithClient(secretsmanager.NewFromConfig(awsConfig), log, cfg), nil
}

// NewAWSCredentialStoreWithClient creates a store around an existing client.
func NewAWSCredentialStoreWithClient(client SecretsManagerAPI, log logger.Logger, cfg AWSSecretsConfig) *AWSCredentialStore {
	cacheTTL := 5 * time.Minute
	cacheMaxSize := 16
	if cfg.Cache > 0 {
		cacheTTL = cfg.Cache
	}
	if cfg.MaxSize > 0 {
		cacheMaxSize = cfg.MaxSize
	}

	log.Info().
		Str("prefix", cfg.Prefix).
		Dur("cache_ttl", cacheTTL).
		Msg("Initializing AWS Secrets Manager edge credential store")

	return &AWSCredentialStore{
		client: client,
		cache:  cache.New(cacheTTL, cacheMaxSize),
		prefix: cfg.Prefix,
		logger: log,
	}
}

// EdgeCredentials implements CredentialSource.
func (s *AWSCredentialStore) EdgeCredentials(ctx context.Context) (EdgeCredentials, error) {
	if cached, ok := s.cache.Get(edgeCredentialsCacheKey).(EdgeCredentials); ok {
		return cached, nil
	}

	creds, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("secret", s.secretName()).
			Msg("Failed to fetch edge credentials from AWS Secrets Manager")
		return EdgeCredentials{}, err
	}

	s.cache.Set(edgeCredentialsCacheKey, creds)
	s.logger.Debug().
		Str("datastream_id", creds.DatastreamID).
		Msg("Retrieved and cached edge credentials")

	return creds, nil
}

func (s *AWSCredentialStore) fetch(ctx context.Context) (EdgeCredentials, error) {
	secretName := s.secretName()

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return EdgeCredentials{}, fmt.Errorf("%w (secret: %s)", ErrCredentialsNotFound, secretName)
		}
		return EdgeCredentials{}, fmt.Errorf("failed to retrieve secret %s: %w", secretName, err)
	}

	if result.SecretString == nil {
		return EdgeCredentials{}, fmt.Errorf("secret value is empty (secret: %s)", secretName)
	}

	var creds EdgeCredentials
	if err := json.Unmarshal([]byte(*result.SecretString), &creds); err != nil {
		return EdgeCredentials{}, fmt.Errorf("failed to parse secret JSON (secret: %s): %w", secretName, err)
	}
	if err := creds.Validate(); err != nil {
		return EdgeCredentials{}, fmt.Errorf("invalid edge credentials (secret: %s): %w", secretName, err)
	}

	return creds, nil
}

func (s *AWSCredentialStore) secretName() string {
	return fmt.Sprintf("%s/edge/credentials", s.prefix)
}

// InvalidateCache forces the next lookup to hit Secrets Manager, e.g. after a key rotation.
func (s *AWSCredentialStore) InvalidateCache() {
	s.cache.Delete(edgeCredentialsCacheKey)
}

// CacheMetrics returns current cache performance metrics
func (s *AWSCredentialStore) CacheMetrics() cache.Metrics {
	return s.cache.Metrics()
}

// Close releases resources used by the store
func (s *AWSCredentialStore) Close() error {
	s.cache.Close()
	return nil
}

// loadAWSConfig loads AWS configuration with support for custom endpoint (LocalStack)
func loadAWSConfig(ctx context.Context, cfg AWSSecretsConfig) (aws.Config, error) {
	result, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return result, err
	}

	if endpoint := cfg.EndpointURL; endpoint != "" {
		result.BaseEndpoint = aws.String(endpoint)
	}

	return result, nil
}
