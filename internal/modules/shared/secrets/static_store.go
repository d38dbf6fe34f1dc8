package secrets

import "context"

// StaticCredentialStore serves credentials taken from configuration, for local development
// and tests without AWS Secrets Manager.
type StaticCredentialStore struct {
	creds EdgeCredentials
}

func NewStaticCredentialStore(creds EdgeCredentials) *StaticCredentialStore {
	return &StaticCredentialStore{creds: creds}
}

// EdgeCredentials implements CredentialSource.
func (s *StaticCredentialStore) EdgeCredentials(_ context.Context) (EdgeCredentials, error) {
	if err := s.creds.Validate(); err != nil {
		return EdgeCredentials{}, ErrCredentialsNotFound
	}
	return s.creds, nil
}
