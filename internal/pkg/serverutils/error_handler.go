package serverutils

import (
	"errors"
	"strings"

	"flcs-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders every error returned by a handler as
// {"error": message}. Errors that are not *fiber.Error are logged and hidden
// behind a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

// ClientIP is the first X-Forwarded-For hop, or the peer address when the
// header is absent.
func ClientIP(ctx *fiber.Ctx) string {
	if forwarded := ctx.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return ctx.IP()
}
