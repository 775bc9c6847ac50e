package auth

import (
	"fmt"
	"slices"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/nisix/errkit/errors"
)

// Claims are the token claims understood by the verifier.
type Claims struct {
	gojwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether the claims grant role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	cfg Config
}

// NewService validates cfg and returns a token service.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Issue signs a token for subject carrying roles.
func (s *Service) Issue(subject string, roles ...string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Roles: roles,
	}
	if s.cfg.Audience != "" {
		claims.Audience = gojwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token. Any failure is an Unauthenticated fault whose
// metadata names the reason.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnauthenticated,
			errors.WithMetadata(map[string]any{"reason": reasonFor(err)}),
			errors.WithCause(err),
		)
	}
	if !parsed.Valid {
		return nil, errors.Unauthenticated(map[string]any{"reason": "invalid_token"})
	}
	return claims, nil
}

// Authorize returns an Unauthorized fault unless claims grant role.
func Authorize(claims *Claims, role string) error {
	if claims == nil {
		return errors.Unauthenticated(map[string]any{"reason": "missing_claims"})
	}
	if !claims.HasRole(role) {
		return errors.Unauthorized(map[string]any{"required_role": role})
	}
	return nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience))
	}
	return opts
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, gojwt.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return "signature_invalid"
	default:
		return "invalid_token"
	}
}
