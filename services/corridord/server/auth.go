package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// AuthConfig configures bearer authentication for the admin surface.
type AuthConfig struct {
	HMACSecret string
	Issuer     string
	Audience   string
	ScopeClaim string
	ClockSkew  time.Duration
}

// Authenticator verifies admin requests before they reach handlers.
type Authenticator struct {
	cfg    AuthConfig
	secret []byte
	logger *slog.Logger
}

// NewAuthenticator constructs an authenticator from configuration.
func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) (*Authenticator, error) {
	secret := strings.TrimSpace(cfg.HMACSecret)
	if secret == "" {
		return nil, fmt.Errorf("admin authenticator requires an HMAC secret")
	}
	if cfg.ScopeClaim == "" {
		cfg.ScopeClaim = "scope"
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{cfg: cfg, secret: []byte(secret), logger: logger}, nil
}

// Middleware enforces bearer authentication and the required scopes.
func (a *Authenticator) Middleware(requiredScopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearer(r.Header.Get("Authorization"))
			if tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := a.parseToken(tokenString)
			if err != nil {
				a.logger.Warn("auth: token validation failed", "error", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			scopes := extractScopes(claims, a.cfg.ScopeClaim)
			if len(requiredScopes) > 0 && !hasScopes(scopes, requiredScopes) {
				http.Error(w, "insufficient scope", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(a.cfg.ClockSkew),
	}
	if issuer := strings.TrimSpace(a.cfg.Issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	if audience := strings.TrimSpace(a.cfg.Audience); audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token rejected")
	}
	return claims, nil
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func extractScopes(claims jwt.MapClaims, claimKey string) []string {
	raw, ok := claims[claimKey]
	if !ok {
		return nil
	}
	switch value := raw.(type) {
	case string:
		return strings.Fields(value)
	case []interface{}:
		scopes := make([]string, 0, len(value))
		for _, entry := range value {
			if s, ok := entry.(string); ok {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}
	return nil
}

func hasScopes(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, scope := range granted {
		set[strings.TrimSpace(scope)] = struct{}{}
	}
	for _, scope := range required {
		if _, ok := set[scope]; !ok {
			return false
		}
	}
	return true
}
