// Package oauth runs the loopback HTTP listener that receives authorization
// callbacks from git hosting providers during sign-in.
package oauth

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"mgit/internal/logging"
	"mgit/internal/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// candidatePorts are tried in order before falling back to an ephemeral
// port. Registered OAuth applications usually whitelist these redirect
// ports, so the fixed ones come first.
var candidatePorts = []int{8000, 8080, 8888, 9000, 9090}

const callbackHost = "localhost"

const successPage = `<html>
<head><title>Authorization complete</title></head>
<body>
<h1>Authorization complete</h1>
<p>You can close this window and return to the application.</p>
<script>window.close();</script>
</body>
</html>`

const deniedPage = `<html>
<head><title>Authorization failed</title></head>
<body>
<h1>Authorization failed</h1>
<p>The request was denied or the authorization code is missing.</p>
<script>setTimeout(function() { window.close(); }, 3000);</script>
</body>
</html>`

// Listener serves provider callbacks at /{provider}/callback on a loopback
// port. One authorization runs at a time; the pending session occupies a
// single slot until it resolves.
type Listener struct {
	logger *logging.AppLogger

	mu      sync.Mutex
	ln      net.Listener
	server  *http.Server
	port    int
	session *Session

	// openBrowser is swapped by tests to avoid launching a real browser.
	openBrowser func(url string) error
}

// NewListener creates a stopped listener. Start binds the port.
func NewListener(logger *logging.AppLogger) *Listener {
	return &Listener{
		logger:      logger,
		openBrowser: openBrowser,
	}
}

// Start binds a loopback port and begins serving callbacks. Each candidate
// port is tried in order; when all are taken an ephemeral port is used.
// Calling Start on a running listener is a no-op.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != nil {
		return nil
	}

	ln, port, err := bindCallbackPort()
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	router.HandleFunc("/{provider}/callback", l.handleCallback).Methods("GET")

	l.ln = ln
	l.port = port
	server := &http.Server{Handler: router}
	l.server = server

	go func() {
		if serveErr := server.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			if l.logger != nil {
				l.logger.Warn("Callback listener stopped", "error", serveErr)
			}
		}
	}()

	if l.logger != nil {
		l.logger.Debug("OAuth callback listener started", "port", port)
	}
	return nil
}

func bindCallbackPort() (net.Listener, int, error) {
	for _, port := range candidatePorts {
		ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", callbackHost, port))
		if err == nil {
			return ln, port, nil
		}
	}
	ln, err := net.Listen("tcp", callbackHost+":0")
	if err != nil {
		return nil, 0, repository.NewError(repository.ErrPortBindFailed,
			"no local port available for the authorization callback: %v", err)
	}
	return ln, ln.Addr().(*net.TCPAddr).Port, nil
}

// Port returns the bound port, or 0 before Start.
func (l *Listener) Port() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port
}

// RedirectURI returns the callback URL to register with the provider.
func (l *Listener) RedirectURI(provider string) string {
	return fmt.Sprintf("http://%s:%d/%s/callback", callbackHost, l.Port(), provider)
}

// Authorize opens the user's browser at authURL (with a state parameter
// appended) and returns the session that will resolve when the provider
// calls back. Only one authorization may be pending at a time.
func (l *Listener) Authorize(provider, authURL string) (*Session, error) {
	l.mu.Lock()
	if l.ln == nil {
		l.mu.Unlock()
		return nil, repository.NewError(repository.ErrPortBindFailed, "callback listener is not running")
	}
	if l.session != nil {
		l.mu.Unlock()
		return nil, repository.NewError(repository.ErrOAuthDenied, "another authorization is already in progress")
	}
	state := uuid.NewString()
	session := newSession(provider, state)
	l.session = session
	browse := l.openBrowser
	l.mu.Unlock()

	full := authURL
	if strings.Contains(full, "?") {
		full += "&state=" + url.QueryEscape(state)
	} else {
		full += "?state=" + url.QueryEscape(state)
	}

	if err := browse(full); err != nil {
		l.clearSession(session)
		return nil, repository.NewError(repository.ErrOAuthDenied, "cannot open browser: %v", err)
	}

	// Free the slot whenever the session resolves, including cancels
	// and timeouts that never hit the callback endpoint.
	go func() {
		<-session.done
		l.clearSession(session)
	}()

	return session, nil
}

func (l *Listener) clearSession(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == s {
		l.session = nil
	}
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	l.mu.Lock()
	session := l.session
	l.mu.Unlock()

	if session == nil || session.provider != provider {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	if state := query.Get("state"); state != "" && state != session.state {
		http.NotFound(w, r)
		return
	}

	if errCode := query.Get("error"); errCode != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, deniedPage)
		session.resolve("", repository.NewError(repository.ErrOAuthDenied,
			"provider denied authorization: %s", errCode))
		return
	}

	code := query.Get("code")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, successPage)
	session.resolve(code, nil)
	if l.logger != nil {
		l.logger.Debug("Authorization code received", "provider", provider)
	}
}

// Stop shuts the listener down and cancels any pending session. Safe to
// call before Start and more than once.
func (l *Listener) Stop() {
	l.mu.Lock()
	server := l.server
	session := l.session
	l.server = nil
	l.ln = nil
	l.port = 0
	l.session = nil
	l.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
	if server != nil {
		_ = server.Close()
	}
}
