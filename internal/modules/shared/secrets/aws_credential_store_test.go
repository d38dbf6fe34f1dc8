package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/gaborage/go-bricks/logger"
)

type mockSecretsManager struct {
	calls  int
	lastID string
	secret *string
	err    error
}

func (m *mockSecretsManager) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.calls++
	m.lastID = aws.ToString(params.SecretId)
	if m.err != nil {
		return nil, m.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: m.secret}, nil
}

func newMockLogger() logger.Logger {
	return logger.New("info", false)
}

func TestAWSCredentialStoreEdgeCredentials(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		secret      *string
		err         error
		wantErr     bool
		wantNotFind bool
		wantID      string
	}{
		{
			name:   "valid secret",
			secret: aws.String(`{"datastreamId":"ds-1","apiKey":"key","orgId":"org@AdobeOrg"}`),
			wantID: "ds-1",
		},
		{
			name:        "secret missing",
			err:         &types.ResourceNotFoundException{Message: aws.String("nope")},
			wantErr:     true,
			wantNotFind: true,
		},
		{
			name:    "service error",
			err:     errors.New("throttled"),
			wantErr: true,
		},
		{
			name:    "empty secret",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			secret:  aws.String(`{`),
			wantErr: true,
		},
		{
			name:    "missing datastream",
			secret:  aws.String(`{"apiKey":"key"}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSecretsManager{secret: tt.secret, err: tt.err}
			store := NewAWSCredentialStoreWithClient(client, newMockLogger(), AWSSecretsConfig{Prefix: "storefront"})
			defer store.Close()

			creds, err := store.EdgeCredentials(ctx)

			if client.lastID != "storefront/edge/credentials" {
				t.Errorf("EdgeCredentials() secret id = %s", client.lastID)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EdgeCredentials() error = nil, wantErr")
				}
				if tt.wantNotFind && !errors.Is(err, ErrCredentialsNotFound) {
					t.Errorf("EdgeCredentials() error = %v, want ErrCredentialsNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EdgeCredentials() unexpected error = %v", err)
			}
			if creds.DatastreamID != tt.wantID {
				t.Errorf("EdgeCredentials() datastream = %s, want %s", creds.DatastreamID, tt.wantID)
			}
		})
	}
}

func TestAWSCredentialStoreCaches(t *testing.T) {
	ctx := context.Background()
	client := &mockSecretsManager{secret: aws.String(`{"datastreamId":"ds-1"}`)}
	store := NewAWSCredentialStoreWithClient(client, newMockLogger(), AWSSecretsConfig{Prefix: "storefront"})
	defer store.Close()

	for i := 0; i < 3; i++ {
		if _, err := store.EdgeCredentials(ctx); err != nil {
			t.Fatalf("EdgeCredentials() unexpected error = %v", err)
		}
	}
	if client.calls != 1 {
		t.Errorf("GetSecretValue calls = %d, want 1", client.calls)
	}

	store.InvalidateCache()
	if _, err := store.EdgeCredentials(ctx); err != nil {
		t.Fatalf("EdgeCredentials() unexpected error = %v", err)
	}
	if client.calls != 2 {
		t.Errorf("GetSecretValue calls after invalidate = %d, want 2", client.calls)
	}
	if store.CacheMetrics().Hits != 2 {
		t.Errorf("CacheMetrics().Hits = %d, want 2", store.CacheMetrics().Hits)
	}
}

func TestStaticCredentialStore(t *testing.T) {
	ctx := context.Background()

	store := NewStaticCredentialStore(EdgeCredentials{DatastreamID: "ds-local"})
	creds, err := store.EdgeCredentials(ctx)
	if err != nil || creds.DatastreamID != "ds-local" {
		t.Errorf("EdgeCredentials() = %v, %v", creds, err)
	}

	empty := NewStaticCredentialStore(EdgeCredentials{})
	if _, err := empty.EdgeCredentials(ctx); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("EdgeCredentials() error = %v, want ErrCredentialsNotFound", err)
	}
}
