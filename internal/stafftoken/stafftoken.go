// Package stafftoken validates the staff access tokens minted by the
// facility SSO. The engine shares an HS256 signing key with the SSO and
// only ever validates; token issuance stays outside this service.
package stafftoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/platform/middleware"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// Claims represents the JWT claims carried by staff access tokens.
type Claims struct {
	StaffID  string `json:"staff_id"`
	Facility string `json:"facility"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service validates staff tokens against the shared signing key.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// New constructs a staff token validator.
func New(signingKey string, issuer string, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// ValidateToken parses and validates a staff token, returning the claims
// in the transport-neutral shape the auth middleware consumes.
func (s *Service) ValidateToken(tokenString string) (*middleware.StaffClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.StaffID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing staff identity")
	}

	return &middleware.StaffClaims{
		StaffID:  claims.StaffID,
		Facility: claims.Facility,
		Role:     claims.Role,
	}, nil
}

// GenerateToken mints a staff token the way the facility SSO does.
// Kept for tests and local development; production tokens come from the SSO.
func (s *Service) GenerateToken(staffID, facility, role string, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StaffID:  staffID,
		Facility: facility,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}
