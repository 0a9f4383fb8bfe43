package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
)

const defaultTokenTTL = 15 * time.Minute

var (
	errTokenExpired   = dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	errTokenInvalid   = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	errSubjectInvalid = dErrors.New(dErrors.CodeUnauthorized, "token subject must be a non-zero address")
)

// Claims are the access token claims. The registered subject carries the
// checksummed address the bearer acts as; Role is informational only, since
// permissions are always resolved against the role registry.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`

	caller domain.Address
}

// Caller is the address parsed from the subject during validation.
func (c *Claims) Caller() domain.Address {
	return c.caller
}

// JWTService signs and validates HS256 bearer tokens for ledger callers.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// GenerateAccessToken issues a token acting on behalf of caller. A
// non-positive ttl falls back to 15 minutes.
func (s *JWTService) GenerateAccessToken(caller domain.Address, role string, ttl time.Duration) (string, error) {
	if caller.IsZero() {
		return "", errSubjectInvalid
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return s.sign(caller, role, s.now(), ttl)
}

func (s *JWTService) sign(caller domain.Address, role string, issued time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Hex(),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
		Role: role,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer, audience and expiry, then parses
// the subject into the caller address.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, errTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errTokenInvalid
	}
	caller, err := domain.ParseAddress(claims.Subject)
	if err != nil || caller.IsZero() {
		return nil, errSubjectInvalid
	}
	claims.caller = caller
	return claims, nil
}
