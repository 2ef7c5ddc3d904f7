package applicationapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application/applicationsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Handlers exposes apply and application lifecycle endpoints.
type Handlers struct {
	service *applicationsrv.ApplicationService
}

func NewHandlers(service *applicationsrv.ApplicationService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires application routes onto the app.
func RegisterRoutes(app *fiber.App, h *Handlers, studentOnly, companyOnly fiber.Handler) {
	api := app.Group("/api/applications")
	api.Post("/", studentOnly, h.Apply)
	api.Get("/mine", studentOnly, h.ListMine)
	api.Get("/posting/:posting_id", companyOnly, h.ListForPosting)
	api.Patch("/:id/status", companyOnly, h.UpdateStatus)
}

func (h *Handlers) Apply(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req application.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	app, err := h.service.Apply(c.Context(), candidateID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *Handlers) ListMine(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	page, err := h.service.ListMine(c.Context(), candidateID, paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) ListForPosting(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	page, err := h.service.ListForPosting(c.Context(), companyID,
		kernel.PostingID(c.Params("posting_id")), paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req application.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	app, err := h.service.UpdateStatus(c.Context(), companyID,
		kernel.ApplicationID(c.Params("id")), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(app)
}

func paginationFrom(c *fiber.Ctx) kernel.PaginationOptions {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = 20
	}
	return kernel.PaginationOptions{Page: page, PageSize: size}
}
