// internal/credentials/store.go
package credentials

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// targetPrefix namespaces this host's entries inside the shared platform
// secret facility.
const targetPrefix = "BrowserAI:"

// Store is the provider-keyed adapter over a secret Backend. Only cloud
// providers persist keys; Ollama never touches the store.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore wires the adapter over the given backend.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger.Named("credentials")}
}

func target(provider schemas.Provider) string {
	return targetPrefix + string(provider)
}

// StoreKey saves an API key for a provider.
func (s *Store) StoreKey(provider schemas.Provider, apiKey string) error {
	if err := s.backend.Store(target(provider), apiKey); err != nil {
		s.logger.Error("failed to store key", zap.String("provider", string(provider)), zap.Error(err))
		return err
	}
	s.logger.Info("stored API key", zap.String("provider", string(provider)))
	return nil
}

// LoadKey returns the stored key, or "" when none exists.
func (s *Store) LoadKey(provider schemas.Provider) string {
	key, err := s.backend.Load(target(provider))
	if err != nil {
		s.logger.Error("failed to load key", zap.String("provider", string(provider)), zap.Error(err))
		return ""
	}
	return key
}

// DeleteKey removes a stored key. Deleting an absent key succeeds.
func (s *Store) DeleteKey(provider schemas.Provider) bool {
	existed, err := s.backend.Delete(target(provider))
	if err != nil {
		s.logger.Error("failed to delete key", zap.String("provider", string(provider)), zap.Error(err))
		return false
	}
	if !existed {
		s.logger.Debug("delete of absent key", zap.String("provider", string(provider)))
	}
	return true
}

// HasKey reports whether a key is stored for the provider.
func (s *Store) HasKey(provider schemas.Provider) bool {
	return s.backend.Has(target(provider))
}
