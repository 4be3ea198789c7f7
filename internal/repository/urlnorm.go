package repository

import (
	"strings"
)

// defaultHost is the hosting domain used to expand "owner/repo" shorthand.
const defaultHost = "github.com"

// knownHostingDomains are code-hosting domains that conventionally serve
// repositories under a ".git" suffix.
var knownHostingDomains = map[string]bool{
	"github.com": true,
	"gitlab.com": true,
}

// NormalizeURL canonicalizes a user-typed repository reference into a
// well-formed fetch/push URL. It is pure, performs no I/O, and is
// idempotent: normalizing an already-normalized URL returns it unchanged.
//
// Rules, in order:
//  1. trim surrounding whitespace
//  2. "owner/repo" shorthand expands to https://github.com/owner/repo.git
//  3. malformed scheme/host/path colon concatenations are repaired by
//     re-deriving scheme + "//" + host + "/" + path (numeric ports survive)
//  4. full-width parentheses are replaced with their ASCII equivalents
//  5. ".git" is appended for known hosting domains when the URL has a path,
//     no query string, and does not already end in ".git"
//
// SSH URLs ("git@host:owner/repo.git") pass through untouched beyond the
// whitespace trim.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}

	// SSH remotes keep their scp-like syntax
	if strings.HasPrefix(u, "git@") {
		return u
	}

	u = strings.ReplaceAll(u, "（", "(")
	u = strings.ReplaceAll(u, "）", ")")

	// "owner/repo" shorthand: exactly one slash, no scheme, no colon
	if !strings.Contains(u, "://") && !strings.Contains(u, ":") &&
		strings.Count(u, "/") == 1 && !strings.ContainsAny(u, " \t") {
		return "https://" + defaultHost + "/" + strings.TrimSuffix(u, ".git") + ".git"
	}

	// Nothing URL-shaped to repair
	if !strings.Contains(u, "://") && !strings.Contains(u, ":") && !strings.Contains(u, "/") {
		return u
	}

	scheme := "https"
	rest := u
	if i := strings.Index(u, "://"); i >= 0 {
		if s := strings.TrimSpace(u[:i]); s != "" {
			scheme = s
		}
		rest = u[i+3:]
	}

	// Stray separators between scheme and host ("https://:github.com/...")
	rest = strings.TrimLeft(rest, ":/")

	host, path := splitHostPath(rest)
	if host == "" {
		return u
	}

	normalized := scheme + "://" + host
	if path != "" {
		normalized += "/" + path
	}

	// Ensure .git suffix for known hosting domains
	bareHost := host
	if i := strings.Index(host, ":"); i >= 0 {
		bareHost = host[:i]
	}
	if knownHostingDomains[bareHost] && path != "" &&
		!strings.ContainsAny(normalized, "?&#") &&
		!strings.HasSuffix(normalized, ".git") {
		normalized += ".git"
	}

	return normalized
}

// normalizeRemoteSource applies NormalizeURL to remote references while
// leaving filesystem paths untouched, so local and file:// remotes work.
func normalizeRemoteSource(url string) string {
	trimmed := strings.TrimSpace(url)
	if strings.HasPrefix(trimmed, "file://") ||
		strings.HasPrefix(trimmed, "/") ||
		strings.HasPrefix(trimmed, "./") ||
		strings.HasPrefix(trimmed, "../") ||
		strings.HasPrefix(trimmed, "~") {
		return trimmed
	}
	return NormalizeURL(trimmed)
}

// splitHostPath separates "host[:port]" from the path component, repairing a
// colon mistakenly inserted where a slash belongs ("github.com:owner/repo").
// A colon followed by digits and a path boundary is treated as a real port.
func splitHostPath(rest string) (host, path string) {
	sep := strings.IndexAny(rest, ":/")
	if sep == -1 {
		return rest, ""
	}

	host = rest[:sep]
	tail := rest[sep:]

	if tail[0] == ':' {
		tail = tail[1:]
		digits := 0
		for digits < len(tail) && tail[digits] >= '0' && tail[digits] <= '9' {
			digits++
		}
		if digits > 0 && (digits == len(tail) || tail[digits] == '/') {
			host = host + ":" + tail[:digits]
			tail = tail[digits:]
		}
		// otherwise the colon was a typo for a slash; tail is the path
	}

	return host, strings.TrimLeft(tail, ":/")
}
