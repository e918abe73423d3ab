package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

const codeInvalidToken = "invalid_token"

// Service resolves the caller of a request.
type Service interface {
	CurrentUser(ctx context.Context) (User, bool, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

// RemoteLookup asks the hosted auth service who owns a token. It reports
// false for rejected tokens and an error only when the service is unreachable.
type RemoteLookup interface {
	GetUser(ctx context.Context, accessToken string) (User, bool, error)
}

type service struct {
	cfg    Config
	remote RemoteLookup
	logger *slog.Logger
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewService constructs a Service. remote may be nil when JWTSecret is set.
func NewService(cfg Config, remote RemoteLookup, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		remote: remote,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) CurrentUser(ctx context.Context) (User, bool, error) {
	token, ok := AccessTokenFrom(ctx)
	if !ok {
		return User{}, false, nil
	}

	if strings.TrimSpace(s.cfg.JWTSecret) != "" {
		claims, err := s.ValidateToken(ctx, token)
		if err != nil {
			if apperrors.IsCode(err, codeInvalidToken) {
				s.logger.Debug("access token rejected", "error", err)
				return User{}, false, nil
			}
			return User{}, false, err
		}
		return User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, true, nil
	}

	if s.remote == nil {
		return User{}, false, apperrors.Wrap(apperrors.CodeAuthUnavailable, "no identity source configured", nil)
	}
	user, found, err := s.remote.GetUser(ctx, token)
	if err != nil {
		return User{}, false, apperrors.Wrap(apperrors.CodeAuthUnavailable, "remote user lookup failed", err)
	}
	if !found {
		return User{}, false, nil
	}
	if _, err := uuid.Parse(user.ID); err != nil {
		return User{}, false, apperrors.Wrap(apperrors.CodeAuthUnavailable, "remote user id is not a uuid", err)
	}
	return user, true, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token missing", nil)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(s.cfg.Leeway))
	}
	if issuer := s.issuer(); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var parsed supabaseClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "failed to verify access token", err)
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token subject is not a user id", err)
	}
	claims := Claims{
		UserID: userID.String(),
		Email:  parsed.Email,
		Role:   parsed.Role,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

func (s *service) issuer() string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.SupabaseURL), "/")
	if base == "" {
		return ""
	}
	return base + "/auth/v1"
}
