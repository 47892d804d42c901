package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/liveworkshop/go/internal/live"
)

// RoleController is the only role allowed to issue live commands.
const RoleController = "controller"

// Config holds the token settings for the controller gate.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultConfig returns a config with sensible defaults; Secret must still be set.
func DefaultConfig() Config {
	return Config{
		Issuer:   "liveworkshop",
		TokenTTL: 12 * time.Hour,
	}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authorizer issues and checks HS256 controller tokens.
type Authorizer struct {
	cfg   Config
	clock clockwork.Clock
}

var _ live.Authorizer = (*Authorizer)(nil)

// NewAuthorizer creates an Authorizer. An empty secret is rejected.
func NewAuthorizer(cfg Config, clock clockwork.Clock) (*Authorizer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Authorizer{cfg: cfg, clock: clock}, nil
}

// IssueToken signs a controller token for subject.
func (a *Authorizer) IssueToken(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", live.ErrValidation)
	}
	now := a.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: RoleController,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
		},
	})
	return token.SignedString([]byte(a.cfg.Secret))
}

// Verify parses a token and returns the controller identity it carries.
func (a *Authorizer) Verify(raw string) (live.Identity, error) {
	var c claims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(raw, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil {
		return live.Identity{}, fmt.Errorf("%w: %v", live.ErrUnauthorized, err)
	}

	// Expiry is checked against the injected clock.
	if !c.VerifyExpiresAt(a.clock.Now(), true) {
		return live.Identity{}, fmt.Errorf("%w: token expired", live.ErrUnauthorized)
	}
	if a.cfg.Issuer != "" && !c.VerifyIssuer(a.cfg.Issuer, true) {
		return live.Identity{}, fmt.Errorf("%w: unexpected issuer %q", live.ErrUnauthorized, c.Issuer)
	}
	if c.Role != RoleController {
		return live.Identity{}, fmt.Errorf("%w: role %q is not controller", live.ErrUnauthorized, c.Role)
	}
	return live.Identity{Subject: c.Subject}, nil
}

// RequireController checks the bearer token carried by ctx.
func (a *Authorizer) RequireController(ctx context.Context) (live.Identity, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return live.Identity{}, fmt.Errorf("%w: missing bearer token", live.ErrUnauthorized)
	}
	return a.Verify(token)
}

type tokenKey struct{}

// WithToken stores a bearer token on ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
