package postingapi

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting/postingsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Handlers exposes posting CRUD and skill extraction endpoints.
type Handlers struct {
	service *postingsrv.PostingService
}

func NewHandlers(service *postingsrv.PostingService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires posting routes onto the app. Listing and reads are
// open to any authenticated account; writes require a company.
func RegisterRoutes(app *fiber.App, h *Handlers, authenticated, companyOnly fiber.Handler) {
	api := app.Group("/api/postings")
	api.Get("/", authenticated, h.List)
	api.Get("/:id", authenticated, h.Get)

	api.Post("/", companyOnly, h.Create)
	api.Post("/upload", companyOnly, h.CreateFromDocument)
	api.Post("/extract-skills", companyOnly, h.ExtractSkills)
	api.Put("/:id", companyOnly, h.Update)
	api.Post("/:id/deactivate", companyOnly, h.Deactivate)
	api.Post("/:id/activate", companyOnly, h.Reactivate)
	api.Delete("/:id", companyOnly, h.Delete)
}

func (h *Handlers) Create(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req posting.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return posting.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	p, err := h.service.Create(c.Context(), companyID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) CreateFromDocument(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return posting.ErrInvalidData().WithDetail("reason", "missing multipart file field")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return posting.ErrInvalidData()
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return posting.ErrInvalidData()
	}

	p, err := h.service.CreateFromDocument(c.Context(), companyID, fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) ExtractSkills(c *fiber.Ctx) error {
	var req posting.ExtractSkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return posting.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	out, err := h.service.ExtractSkills(c.Context(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *Handlers) List(c *fiber.Ctx) error {
	f := posting.ListFilter{
		ActiveOnly: c.QueryBool("active_only", true),
		Search:     c.Query("search"),
	}
	if c.Query("mine") == "true" {
		if companyID, ok := auth.GetAccountID(c); ok {
			f.CompanyID = companyID
			f.ActiveOnly = false
		}
	}

	opts := kernel.PaginationOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	page, err := h.service.List(c.Context(), f, opts)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.Context(), kernel.PostingID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req posting.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return posting.ErrInvalidData().WithDetail("reason", "malformed body")
	}

	p, err := h.service.Update(c.Context(), companyID, kernel.PostingID(c.Params("id")), req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	companyID, _ := auth.GetAccountID(c)

	if err := h.service.Deactivate(c.Context(), companyID, kernel.PostingID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) Reactivate(c *fiber.Ctx) error {
	companyID, _ := auth.GetAccountID(c)

	if err := h.service.Reactivate(c.Context(), companyID, kernel.PostingID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	companyID, _ := auth.GetAccountID(c)

	if err := h.service.Delete(c.Context(), companyID, kernel.PostingID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
