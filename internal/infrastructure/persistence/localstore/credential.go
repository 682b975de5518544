package localstore

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/credential"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// CredentialStore holds the single provider credential under its own
// key. Set performs only the static format check; validity is
// discovered lazily on the first provider request that returns 401.
type CredentialStore struct {
	kv     outbound.KVStore
	logger *zap.Logger
}

// NewCredentialStore creates a credential store over kv.
func NewCredentialStore(kv outbound.KVStore, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{
		kv:     kv,
		logger: logger.Named("credential-store"),
	}
}

var _ outbound.CredentialRepository = (*CredentialStore)(nil)

// Get returns the stored credential, if any.
func (s *CredentialStore) Get(ctx context.Context) (credential.Credential, bool, error) {
	data, ok, err := s.kv.Get(ctx, keyCredential)
	if err != nil {
		return "", false, errors.NewStorageError("read credential", err)
	}
	if !ok || len(data) == 0 {
		return "", false, nil
	}
	return credential.Credential(data), true, nil
}

// Set validates the format and stores the trimmed credential.
func (s *CredentialStore) Set(ctx context.Context, cred credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return errors.NewValidationError(err.Error())
	}

	trimmed := strings.TrimSpace(cred.String())
	if err := s.kv.Set(ctx, keyCredential, []byte(trimmed)); err != nil {
		return errors.NewStorageError("write credential", err)
	}

	s.logger.Info("credential stored", zap.String("credential", credential.Credential(trimmed).Masked()))
	return nil
}

// Remove deletes the credential, which blocks the app until a new one
// is supplied.
func (s *CredentialStore) Remove(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyCredential); err != nil {
		return errors.NewStorageError("delete credential", err)
	}
	s.logger.Info("credential removed")
	return nil
}

// Has is the pure presence check used as the application gate.
func (s *CredentialStore) Has(ctx context.Context) bool {
	_, ok, err := s.Get(ctx)
	return err == nil && ok
}
