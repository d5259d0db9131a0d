package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrInvalidToken covers every way a token can fail verification.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is the lifetime of tokens issued at login and registration.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TTL returns the default lifetime for issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// GenerateToken signs a token for the identity using the default TTL.
func (tm *TokenManager) GenerateToken(identity domain.Identity) (domain.Token, error) {
	return tm.Issue(identity, tm.ttl)
}

// Issue signs a token for the identity that expires after ttl.
func (tm *TokenManager) Issue(identity domain.Identity, ttl time.Duration) (domain.Token, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Email: identity.Email,
		Role:  string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.SubjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify checks signature and expiry and returns the identity carried by the token.
func (tm *TokenManager) Verify(tokenStr string) (domain.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	// jwt accepts exp == now; a token is only valid strictly before its expiry.
	if !tm.now().Before(claims.ExpiresAt.Time) {
		return domain.Identity{}, ErrInvalidToken
	}
	return identityFromClaims(claims)
}

// Decode parses the payload without verifying signature or expiry.
// Only for inspection; never use the result for authorization.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsExpired reports whether the token is unreadable or past its expiry.
func (tm *TokenManager) IsExpired(tokenStr string) bool {
	claims, err := tm.Decode(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !tm.now().Before(claims.ExpiresAt.Time)
}

func identityFromClaims(claims *Claims) (domain.Identity, error) {
	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{SubjectID: claims.Subject, Email: claims.Email, Role: role}, nil
}
