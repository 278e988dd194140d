package controller

import (
	"errors"

	"flcs-chatbot-be/internal/dto"
	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/pkg/serverutils"
	"flcs-chatbot-be/internal/service"
	internalWS "flcs-chatbot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Chat(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatbotController(chatService service.IChatService, hub *internalWS.Hub, log logger.ILogger) IChatbotController {
	return &chatbotController{
		chatService: chatService,
		hub:         hub,
		logger:      log,
	}
}

// RegisterRoutes mounts the chat endpoints behind middleware (session cookie,
// rate limit).
func (c *chatbotController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/chat", middleware...)
	h.Post("", c.Chat)

	if c.hub != nil {
		h.Get("/ws", upgradeOnly, websocket.New(c.serveWs))
	}
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "query is required")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	env, err := c.chatService.Chat(ctx.UserContext(), serverutils.SessionID(ctx), req.Query)
	if errors.Is(err, service.ErrCriticalFailure) {
		return ctx.Status(fiber.StatusInternalServerError).JSON(env)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(env)
}

func (c *chatbotController) serveWs(conn *websocket.Conn) {
	sessionID, _ := conn.Locals(serverutils.SessionLocalKey).(string)
	internalWS.ServeWs(c.hub, conn, sessionID, c.chatService.Chat, c.logger)
}

func upgradeOnly(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}
