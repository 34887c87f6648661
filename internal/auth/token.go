package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/linkbio-service/internal/domain"
)

// Verification failure kinds. All collapse to 401 at the HTTP boundary;
// the distinction is kept for diagnostics.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Principal is the authenticated identity decoded from a verified token.
type Principal struct {
	ID     int64
	Handle string
	Role   domain.Role
}

// Claims describes the JWT payload: subject id plus handle and role.
type Claims struct {
	Handle string      `json:"handle"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue builds and signs a token for the principal using the default TTL.
func (tm *TokenManager) Issue(p Principal) (string, time.Time, error) {
	return tm.IssueWithTTL(p, tm.ttl)
}

// IssueWithTTL signs a token expiring after the given duration. Pure apart
// from reading the clock; nothing is persisted and issued tokens cannot be
// revoked, only outlived.
func (tm *TokenManager) IssueWithTTL(p Principal, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Handle: p.Handle,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks structure, signature and expiry, and returns the principal.
// It never consults a store; callers confirm the principal still exists.
func (tm *TokenManager) Verify(tokenStr string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		default:
			return nil, ErrMalformedToken
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}

	role := claims.Role
	if role == "" {
		role = domain.RoleUser
	}

	return &Principal{ID: id, Handle: claims.Handle, Role: role}, nil
}
