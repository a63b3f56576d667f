package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshTokenType is the value of the "type" claim that distinguishes
// refresh tokens from access tokens. Both kinds are signed with the same
// secret; the discriminator prevents one from being accepted where the
// other is expected.
const refreshTokenType = "refresh"

// Claims is the payload carried by every token issued by this service.
type Claims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool { return c.TokenType == refreshTokenType }

// TokenIssuer creates and verifies HS256-signed bearer tokens. The secret
// is injected at construction so tests can supply a fixed value.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer with the given signing secret and token
// lifetimes.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken signs a short-lived token identifying the user.
// Access tokens are stateless: validity is signature plus expiry, never a
// store lookup.
func (i *TokenIssuer) IssueAccessToken(userID uint64) (string, error) {
	return i.sign(userID, "", i.accessTTL)
}

// IssueRefreshToken signs a long-lived token carrying the refresh type
// discriminator. Callers persist it as a session row.
func (i *TokenIssuer) IssueRefreshToken(userID uint64) (string, error) {
	return i.sign(userID, refreshTokenType, i.refreshTTL)
}

func (i *TokenIssuer) sign(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses and validates a token, returning its claims. It returns
// nil on any failure: bad signature, wrong signing method, malformed or
// expired input. Callers must treat nil as "untrusted, reject".
func (i *TokenIssuer) Verify(token string) *Claims {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
