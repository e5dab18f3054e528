package gateway

import (
	"sync"
	"time"

	"github.com/centsible/centsible-go/internal/credstore"
	"github.com/centsible/centsible-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Session owns the credential pair for one logical sign-in. It replaces the
// implicit storage-clear-plus-redirect of the original UI: the client calls
// Invalidate on a 401/440 and the UI layer subscribes to the invalidation
// event instead of the core navigating anywhere itself.
type Session struct {
	store credstore.Store

	mu          sync.Mutex
	invalidated bool
	subs        []func()
}

// NewSession wraps a credential store.
func NewSession(store credstore.Store) *Session {
	return &Session{store: store}
}

// AccessToken returns the stored access token, empty when signed out.
// An outbound request either carries a currently-stored token or no
// Authorization header at all — never a stale one.
func (s *Session) AccessToken() string {
	access, _ := s.store.Tokens()
	return access
}

// RefreshToken returns the stored refresh token, empty when signed out.
func (s *Session) RefreshToken() string {
	_, refresh := s.store.Tokens()
	return refresh
}

// SetTokens stores a fresh credential pair and re-arms invalidation.
func (s *Session) SetTokens(tokens domain.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return err
	}
	s.invalidated = false
	return nil
}

// Invalidate erases the credential pair and notifies subscribers. For a given
// sign-in it runs at most once, no matter how many concurrent requests hit an
// expired session; later calls report false. The store is cleared before any
// subscriber runs, so dependent logic never sees a stale token.
func (s *Session) Invalidate() bool {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return false
	}
	s.invalidated = true
	_ = s.store.Clear()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return true
}

// OnInvalidate registers fn to run when the session is invalidated.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AccessTokenExpiry reports the exp claim of the stored access token.
// The token is parsed without signature verification — the client has no key
// and only needs the timestamp for proactive refresh decisions.
func (s *Session) AccessTokenExpiry() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the stored access token is past its exp claim.
// Tokens without a readable claim are assumed live; the server decides.
func (s *Session) Expired() bool {
	exp, ok := s.AccessTokenExpiry()
	return ok && time.Now().After(exp)
}
