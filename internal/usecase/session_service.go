package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stocklens/backend/internal/domain"
)

// DefaultZipTTL is how long a session remembers its last zipcode
const DefaultZipTTL = 24 * time.Hour

// SessionServiceConfig holds configuration for session-scoped values
type SessionServiceConfig struct {
	SchemaVersion string
	ZipTTL        time.Duration
}

// SessionService remembers the last valid zipcode a session searched with
type SessionService struct {
	store         domain.CacheRepository
	schemaVersion string
	zipTTL        time.Duration
}

// NewSessionService creates a session service on top of store
func NewSessionService(store domain.CacheRepository, config SessionServiceConfig) *SessionService {
	schemaVersion := config.SchemaVersion
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
	}
	zipTTL := config.ZipTTL
	if zipTTL <= 0 {
		zipTTL = DefaultZipTTL
	}

	return &SessionService{
		store:         store,
		schemaVersion: schemaVersion,
		zipTTL:        zipTTL,
	}
}

// SessionKeyZip is the per-session key of the last zipcode.
// Format: "zipcode--{version}"
func SessionKeyZip(version string) string {
	return "zipcode--" + version
}

// RememberZip stores zip as the session's last zipcode. Invalid zipcodes are
// rejected and an empty session id is a no-op.
func (s *SessionService) RememberZip(ctx context.Context, sessionID, zip string) error {
	if !IsValidZipcode(zip) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidZipcode, zip)
	}
	if sessionID == "" {
		return nil
	}
	return s.store.Set(ctx, s.zipKey(sessionID), []byte(zip), s.zipTTL)
}

// LastZip returns the session's last zipcode, if any
func (s *SessionService) LastZip(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}

	value, err := s.store.Get(ctx, s.zipKey(sessionID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[Session] failed to read zipcode for %s: %v", sessionID, err)
		}
		return "", false
	}

	zip := string(value)
	if !IsValidZipcode(zip) {
		return "", false
	}
	return zip, true
}

// ForgetZip clears the session's last zipcode
func (s *SessionService) ForgetZip(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Delete(ctx, s.zipKey(sessionID))
}

// zipKey format: "session:{id}:zipcode--{version}"
func (s *SessionService) zipKey(sessionID string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, SessionKeyZip(s.schemaVersion))
}
