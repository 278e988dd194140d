package serverutils

import (
	"fmt"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionLocalKey      = "session_id"
	DefaultSessionSecret = "flcs-dev-secret-change-me"
)

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware binds every request to a conversation id carried in an
// HS256-signed cookie. A cookie that fails verification starts a new
// conversation.
func SessionMiddleware(cfg SessionConfig, log logger.ILogger) fiber.Handler {
	if cfg.Secret == "" {
		log.Warn("SESSION", "SESSION_SECRET not set, using the built-in development secret", nil)
		cfg.Secret = DefaultSessionSecret
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "flcs_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	secret := []byte(cfg.Secret)

	return func(ctx *fiber.Ctx) error {
		sessionID, err := parseSessionToken(ctx.Cookies(cfg.CookieName), secret)
		if err != nil {
			sessionID = uuid.NewString()
			token, err := signSessionToken(sessionID, secret, time.Now().Add(cfg.TTL))
			if err != nil {
				return err
			}
			ctx.Cookie(&fiber.Cookie{
				Name:     cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HTTPOnly: true,
				Secure:   cfg.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		ctx.Locals(SessionLocalKey, sessionID)
		return ctx.Next()
	}
}

// SessionID returns the id bound by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(SessionLocalKey).(string)
	return id
}

func signSessionToken(sessionID string, secret []byte, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSessionToken(tokenStr string, secret []byte) (string, error) {
	if tokenStr == "" {
		return "", fmt.Errorf("no session cookie")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid session cookie")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}
