package oauth

import (
	"context"
	"sync"
	"time"

	"mgit/internal/repository"
)

// defaultWaitTimeout bounds Wait when the caller's context has no deadline.
// Authorization pages left open in a forgotten browser tab should not pin
// the listener forever.
const defaultWaitTimeout = 5 * time.Minute

// Session is one pending authorization. It resolves exactly once, to either
// an authorization code or an error; later resolution attempts (a second
// callback hit, a cancel racing the callback) are ignored.
type Session struct {
	provider string
	state    string

	once sync.Once
	done chan struct{}
	code string
	err  error
}

func newSession(provider, state string) *Session {
	return &Session{
		provider: provider,
		state:    state,
		done:     make(chan struct{}),
	}
}

// Provider returns the provider this session authorizes against.
func (s *Session) Provider() string {
	return s.provider
}

// resolve assigns the session's outcome. First caller wins.
func (s *Session) resolve(code string, err error) {
	s.once.Do(func() {
		s.code = code
		s.err = err
		close(s.done)
	})
}

// Cancel resolves the session with an OAuthDenied error unless a callback
// already resolved it.
func (s *Session) Cancel() {
	s.resolve("", repository.NewError(repository.ErrOAuthDenied, "authorization cancelled"))
}

// Wait blocks until the session resolves, the context is done, or the
// default timeout elapses when the context carries no deadline. It returns
// the authorization code on success.
func (s *Session) Wait(ctx context.Context) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultWaitTimeout)
		defer cancel()
	}

	select {
	case <-s.done:
		return s.code, s.err
	case <-ctx.Done():
		s.Cancel()
		return "", repository.NewError(repository.ErrOAuthDenied, "timed out waiting for authorization")
	}
}
