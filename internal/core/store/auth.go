package store

import (
	"context"
	"strings"

	"github.com/imoview/realty-crm/internal/core/domain"
)

// Login authenticates by email and password. The stored password defaults to
// the legacy fallback when the record has none. On success the session user
// is set, an initial bulk load from the remote side starts in the background,
// and the realtime channels are opened.
func (s *Store) Login(ctx context.Context, email, password string) (domain.User, error) {
	s.mu.Lock()

	var found *domain.User
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := u
			found = &clone
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if found.Blocked {
		s.pushError("This account is blocked. Contact an administrator.")
		s.mu.Unlock()
		return domain.User{}, domain.ErrUserBlocked
	}
	if !s.verifier.Verify(found.Password, password) {
		s.mu.Unlock()
		return domain.User{}, domain.ErrInvalidCredentials
	}

	s.current = found
	s.persistProjection()
	user := *found
	s.mu.Unlock()

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login")

	// Hydration and replication run as background continuations; the login
	// caller only waits for the credential check. The caller's ctx is
	// usually a request context that is cancelled as soon as the login
	// response is written, so the continuations must not inherit its
	// cancellation.
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.Hydrate(bg); err != nil {
			s.log.Warn().Err(err).Msg("initial remote load failed, staying local")
		}
	}()
	s.openRealtime(bg)

	return user, nil
}

// Logout clears the session and closes the realtime subscriptions, tying the
// channel lifecycle to the authenticated session.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = nil
	s.persistProjection()
	s.mu.Unlock()

	if s.feed != nil {
		s.feed.CloseAll()
	}
	s.log.Info().Msg("logout")
}

// CurrentUser returns the session user, if any.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

// actor returns the acting user for audit attribution. Mutations performed
// before login are attributed to "system".
func (s *Store) actor() (id, name string, role domain.Role) {
	if s.current == nil {
		return "", "system", ""
	}
	return s.current.ID, s.current.Name, s.current.Role
}
