package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityClaims are the claims read from an identity provider token. The
// subject is the opaque identity; email and name only seed new profiles.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type IdentityConfig struct {
	SecretKey string
	Issuer    string
	Leeway    time.Duration
}

// IdentityVerifier checks identity tokens. Tokens are issued elsewhere.
type IdentityVerifier interface {
	Enabled() bool
	// SetContextFromToken verifies tokenString and attaches the caller's
	// RequestData to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type identityVerifier struct {
	log    *logger.Logger
	cfg    IdentityConfig
	parser *jwt.Parser
}

func NewIdentityVerifier(log *logger.Logger, cfg IdentityConfig) IdentityVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &identityVerifier{
		log:    log.With("service", "IdentityVerifier"),
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
	}
}

func (v *identityVerifier) Enabled() bool {
	return strings.TrimSpace(v.cfg.SecretKey) != ""
}

func (v *identityVerifier) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if !v.Enabled() {
		return ctx, fmt.Errorf("identity verification is not configured")
	}
	claims := &IdentityClaims{}
	tok, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(v.cfg.SecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok == nil || !tok.Valid {
		return ctx, ErrInvalidToken
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return ctx, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		Identity:    sub,
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: strings.TrimSpace(claims.Name),
	}), nil
}
