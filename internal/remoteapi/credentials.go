package remoteapi

import (
	"context"
	"net/http"
	"strings"
)

const SessionCookieName = "session"

// Credentials are the caller's own session material, forwarded as-is.
type Credentials struct {
	Authorization string
	Session       string
}

func (c Credentials) Empty() bool {
	return c.Authorization == "" && c.Session == ""
}

// CredentialsFromRequest picks the Authorization header and the session cookie.
func CredentialsFromRequest(r *http.Request) Credentials {
	var c Credentials
	c.Authorization = strings.TrimSpace(r.Header.Get("Authorization"))
	if ck, err := r.Cookie(SessionCookieName); err == nil {
		c.Session = strings.TrimSpace(ck.Value)
	}
	return c
}

type credentialsKey struct{}

func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

func credentialsFrom(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKey{}).(Credentials)
	if !ok || c.Empty() {
		return Credentials{}, false
	}
	return c, true
}
