package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the stable classification of a repository or OAuth failure.
//
// The underlying tooling reports failures as opaque diagnostic strings, so
// every raw error is run through Classify before it reaches a caller. The
// kinds below are the complete vocabulary the rest of the application is
// allowed to branch on.
type ErrorKind int

const (
	// ErrUnclassified is the fallback kind; the original diagnostic text is
	// preserved in RepoError.Message.
	ErrUnclassified ErrorKind = iota

	// ErrNotARepository indicates the target path has no repository metadata.
	ErrNotARepository

	// ErrHostUnreachable indicates a network-level failure reaching the remote.
	ErrHostUnreachable

	// ErrAuthenticationFailed indicates the remote rejected the credentials.
	ErrAuthenticationFailed

	// ErrRemoteNotFound indicates a named remote does not exist, or the
	// remote side reported no repository at the configured URL.
	ErrRemoteNotFound

	// ErrRemoteAlreadyExists indicates an attempt to add a remote under a
	// name that is already taken.
	ErrRemoteAlreadyExists

	// ErrPushRejectedNeedsPull indicates the remote contains commits the
	// local branch does not have; a pull is required first.
	ErrPushRejectedNeedsPull

	// ErrDestinationNotEmpty indicates a clone target directory exists and
	// is not empty.
	ErrDestinationNotEmpty

	// ErrBranchNotFound indicates a named branch does not exist locally or
	// on the remote.
	ErrBranchNotFound

	// ErrEmptyMessage indicates a commit was requested with a blank message.
	ErrEmptyMessage

	// ErrPortBindFailed indicates the OAuth callback listener could not bind
	// any local port.
	ErrPortBindFailed

	// ErrOAuthDenied indicates the provider reported an authorization error,
	// or the user cancelled the flow.
	ErrOAuthDenied
)

// String returns the identifier-style name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNotARepository:
		return "NotARepository"
	case ErrHostUnreachable:
		return "HostUnreachable"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrRemoteNotFound:
		return "RemoteNotFound"
	case ErrRemoteAlreadyExists:
		return "RemoteAlreadyExists"
	case ErrPushRejectedNeedsPull:
		return "PushRejectedNeedsPull"
	case ErrDestinationNotEmpty:
		return "DestinationNotEmpty"
	case ErrBranchNotFound:
		return "BranchNotFound"
	case ErrEmptyMessage:
		return "EmptyMessage"
	case ErrPortBindFailed:
		return "PortBindFailed"
	case ErrOAuthDenied:
		return "OAuthDenied"
	default:
		return "Unclassified"
	}
}

// RepoError is a classified repository failure. Message always preserves the
// original diagnostic text; Error() prefixes it with a stable, human-readable
// description derived from the kind.
type RepoError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *RepoError) Error() string {
	desc := e.Kind.describe()
	if e.Message == "" {
		return desc
	}
	if e.Kind == ErrUnclassified {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", desc, e.Message)
}

func (e *RepoError) Unwrap() error {
	return e.Cause
}

// describe returns the user-facing description for a kind.
func (k ErrorKind) describe() string {
	switch k {
	case ErrNotARepository:
		return "not a git repository"
	case ErrHostUnreachable:
		return "cannot reach the remote host - check your network connection"
	case ErrAuthenticationFailed:
		return "authentication failed - check your credentials"
	case ErrRemoteNotFound:
		return "remote repository not found"
	case ErrRemoteAlreadyExists:
		return "a remote with this name already exists"
	case ErrPushRejectedNeedsPull:
		return "the remote contains changes you do not have - pull first"
	case ErrDestinationNotEmpty:
		return "destination path already exists and is not empty"
	case ErrBranchNotFound:
		return "branch not found"
	case ErrEmptyMessage:
		return "commit message cannot be empty"
	case ErrPortBindFailed:
		return "could not bind a local callback port"
	case ErrOAuthDenied:
		return "authorization was denied or cancelled"
	default:
		return "operation failed"
	}
}

// NewError builds a RepoError with an explicit kind, for failures that are
// known at the call site rather than classified from diagnostic text.
func NewError(kind ErrorKind, format string, args ...interface{}) *RepoError {
	return &RepoError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func newRepoError(kind ErrorKind, format string, args ...interface{}) *RepoError {
	return NewError(kind, format, args...)
}

// classifyRule maps a set of lowercase substrings to an error kind. Every
// listed token must appear for the rule to match, which keeps compound
// patterns like "destination path ... already exists" unambiguous.
type classifyRule struct {
	tokens []string
	kind   ErrorKind
}

// classifyRules is the single substring table used to classify diagnostic
// text from the underlying tooling (go-git errors and git CLI stderr).
// Rules are evaluated in order; the first full match wins. The tokens are
// chosen from stable fragments that survive locale and version variance.
var classifyRules = []classifyRule{
	// Network
	{[]string{"could not resolve host"}, ErrHostUnreachable},
	{[]string{"no such host"}, ErrHostUnreachable},
	{[]string{"connection refused"}, ErrHostUnreachable},
	{[]string{"connection timed out"}, ErrHostUnreachable},
	{[]string{"network is unreachable"}, ErrHostUnreachable},
	{[]string{"i/o timeout"}, ErrHostUnreachable},

	// Authentication
	{[]string{"authentication failed"}, ErrAuthenticationFailed},
	{[]string{"authentication required"}, ErrAuthenticationFailed},
	{[]string{"authorization failed"}, ErrAuthenticationFailed},
	{[]string{"not authorized"}, ErrAuthenticationFailed},
	{[]string{"invalid username or password"}, ErrAuthenticationFailed},
	{[]string{"401"}, ErrAuthenticationFailed},
	{[]string{"403"}, ErrAuthenticationFailed},

	// Push rejection (before the generic "rejected" auth-adjacent wording)
	{[]string{"non-fast-forward"}, ErrPushRejectedNeedsPull},
	{[]string{"fetch first"}, ErrPushRejectedNeedsPull},
	{[]string{"remote contains work that you do"}, ErrPushRejectedNeedsPull},
	{[]string{"rejected"}, ErrPushRejectedNeedsPull},

	// Clone destination (both tokens required)
	{[]string{"destination path", "already exists"}, ErrDestinationNotEmpty},

	// Remotes
	{[]string{"remote already exists"}, ErrRemoteAlreadyExists},
	{[]string{"remote", "already exists"}, ErrRemoteAlreadyExists},
	{[]string{"remote not found"}, ErrRemoteNotFound},
	{[]string{"no such remote"}, ErrRemoteNotFound},
	{[]string{"repository not found"}, ErrRemoteNotFound},

	// Branches
	{[]string{"couldn't find remote ref"}, ErrBranchNotFound},
	{[]string{"branch", "not found"}, ErrBranchNotFound},
	{[]string{"did not match any file(s) known to git"}, ErrBranchNotFound},
	{[]string{"reference not found"}, ErrBranchNotFound},

	// Local repository
	{[]string{"not a git repository"}, ErrNotARepository},
	{[]string{"repository does not exist"}, ErrNotARepository},
}

// ClassifyMessage maps raw diagnostic text onto an ErrorKind. Unrecognized
// text classifies as ErrUnclassified.
func ClassifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	for _, rule := range classifyRules {
		matched := true
		for _, token := range rule.tokens {
			if !strings.Contains(lower, token) {
				matched = false
				break
			}
		}
		if matched {
			return rule.kind
		}
	}
	return ErrUnclassified
}

// Classify wraps an arbitrary error into a RepoError, preserving the
// original text. Errors that are already classified pass through unchanged.
func Classify(err error) *RepoError {
	if err == nil {
		return nil
	}
	var re *RepoError
	if errors.As(err, &re) {
		return re
	}
	return &RepoError{
		Kind:    ClassifyMessage(err.Error()),
		Message: err.Error(),
		Cause:   err,
	}
}
