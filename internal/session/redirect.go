package session

import (
	"net/url"
	"strings"
)

const (
	LoginPath       = "/login"
	DefaultRedirect = "/"
)

// LoginRedirect is where an anonymous shopper asking for path is sent.
func LoginRedirect(path string) string {
	return LoginPath + "?next=" + url.QueryEscape(SafeNext(path))
}

// SafeNext returns next when it is a local, relative path and
// DefaultRedirect otherwise, so a login can never bounce off-site.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return DefaultRedirect
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultRedirect
	}
	return next
}
