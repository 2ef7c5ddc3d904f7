package accountapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account/accountsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
)

// Handlers exposes account registration, login and profile endpoints.
type Handlers struct {
	service *accountsrv.AccountService
}

func NewHandlers(service *accountsrv.AccountService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires account routes onto the app.
func RegisterRoutes(app *fiber.App, h *Handlers, authMiddleware fiber.Handler) {
	api := app.Group("/api/auth")
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Get("/me", authMiddleware, h.Me)
	api.Delete("/me", authMiddleware, h.Deactivate)
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	var req account.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return account.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	resp, err := h.service.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var req account.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return account.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	resp, err := h.service.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handlers) Me(c *fiber.Ctx) error {
	accountID, ok := auth.GetAccountID(c)
	if !ok {
		return account.ErrNotAuthorized()
	}

	acc, err := h.service.GetProfile(c.Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(acc)
}

func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	accountID, ok := auth.GetAccountID(c)
	if !ok {
		return account.ErrNotAuthorized()
	}

	if err := h.service.Deactivate(c.Context(), accountID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
