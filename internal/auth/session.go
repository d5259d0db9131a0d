package auth

import (
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CookieName is the cookie carrying the session token.
const CookieName = "authToken"

// TokenVerifier is the part of TokenManager the resolver depends on.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// SessionResolver turns request credentials into an identity.
type SessionResolver struct {
	tokens TokenVerifier
}

// NewSessionResolver constructs a resolver.
func NewSessionResolver(tokens TokenVerifier) *SessionResolver {
	return &SessionResolver{tokens: tokens}
}

// Resolve returns the caller identity from the Authorization header or the session cookie.
// A bearer header takes precedence over the cookie. Missing and invalid tokens both yield false.
func (r *SessionResolver) Resolve(authorization, cookie string) (domain.Identity, bool) {
	token, ok := bearerToken(authorization)
	if !ok {
		token = strings.TrimSpace(cookie)
	}
	if token == "" {
		return domain.Identity{}, false
	}
	identity, err := r.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, false
	}
	return identity, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
