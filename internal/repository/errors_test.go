package repository

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorKind
	}{
		{
			name: "dns failure",
			msg:  "fatal: unable to access 'https://github.com/a/b.git/': Could not resolve host: github.com",
			want: ErrHostUnreachable,
		},
		{
			name: "go resolver failure",
			msg:  "Get \"https://github.com/a/b.git\": dial tcp: lookup github.com: no such host",
			want: ErrHostUnreachable,
		},
		{
			name: "connection refused",
			msg:  "dial tcp 127.0.0.1:9418: connect: connection refused",
			want: ErrHostUnreachable,
		},
		{
			name: "authentication required",
			msg:  "authentication required: Repository not found.",
			want: ErrAuthenticationFailed,
		},
		{
			name: "bad credentials",
			msg:  "fatal: Authentication failed for 'https://github.com/a/b.git/'",
			want: ErrAuthenticationFailed,
		},
		{
			name: "http 403",
			msg:  "unexpected client error: unexpected requesting \"https://github.com/a/b.git\" status code: 403",
			want: ErrAuthenticationFailed,
		},
		{
			name: "non fast forward push",
			msg:  "non-fast-forward update: refs/heads/main",
			want: ErrPushRejectedNeedsPull,
		},
		{
			name: "fetch first hint",
			msg:  "! [rejected] main -> main (fetch first)",
			want: ErrPushRejectedNeedsPull,
		},
		{
			name: "destination exists",
			msg:  "fatal: destination path 'proj' already exists and is not an empty directory.",
			want: ErrDestinationNotEmpty,
		},
		{
			name: "remote already exists",
			msg:  "error: remote origin already exists.",
			want: ErrRemoteAlreadyExists,
		},
		{
			name: "remote missing",
			msg:  "fatal: No such remote: 'upstream'",
			want: ErrRemoteNotFound,
		},
		{
			name: "remote ref missing",
			msg:  "fatal: couldn't find remote ref refs/heads/nope",
			want: ErrBranchNotFound,
		},
		{
			name: "local reference missing",
			msg:  "reference not found",
			want: ErrBranchNotFound,
		},
		{
			name: "pathspec mismatch",
			msg:  "error: pathspec 'nope' did not match any file(s) known to git",
			want: ErrBranchNotFound,
		},
		{
			name: "not a repository",
			msg:  "fatal: not a git repository (or any of the parent directories): .git",
			want: ErrNotARepository,
		},
		{
			name: "unknown text",
			msg:  "something completely unexpected happened",
			want: ErrUnclassified,
		},
		{
			name: "empty text",
			msg:  "",
			want: ErrUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMessage(tt.msg)
			if got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassify_PreservesOriginalText(t *testing.T) {
	orig := errors.New("something completely unexpected happened")
	re := Classify(orig)
	if re.Kind != ErrUnclassified {
		t.Fatalf("Kind = %v, want ErrUnclassified", re.Kind)
	}
	if re.Message != orig.Error() {
		t.Errorf("Message = %q, want original text %q", re.Message, orig.Error())
	}
	if !errors.Is(re, orig) {
		t.Error("classified error should wrap the original")
	}
}

func TestClassify_PassesThroughRepoError(t *testing.T) {
	orig := newRepoError(ErrEmptyMessage, "commit message must not be empty")
	re := Classify(orig)
	if re != orig {
		t.Error("an already-classified error should pass through unchanged")
	}

	wrapped := fmt.Errorf("commit failed: %w", orig)
	re = Classify(wrapped)
	if re.Kind != ErrEmptyMessage {
		t.Errorf("Kind = %v, want ErrEmptyMessage from wrapped error", re.Kind)
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrNotARepository, "NotARepository"},
		{ErrHostUnreachable, "HostUnreachable"},
		{ErrAuthenticationFailed, "AuthenticationFailed"},
		{ErrRemoteNotFound, "RemoteNotFound"},
		{ErrRemoteAlreadyExists, "RemoteAlreadyExists"},
		{ErrPushRejectedNeedsPull, "PushRejectedNeedsPull"},
		{ErrDestinationNotEmpty, "DestinationNotEmpty"},
		{ErrBranchNotFound, "BranchNotFound"},
		{ErrEmptyMessage, "EmptyMessage"},
		{ErrPortBindFailed, "PortBindFailed"},
		{ErrOAuthDenied, "OAuthDenied"},
		{ErrUnclassified, "Unclassified"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
