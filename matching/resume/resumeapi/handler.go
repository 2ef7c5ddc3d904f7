package resumeapi

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumesrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Handlers exposes resume upload and lifecycle endpoints for students.
type Handlers struct {
	service *resumesrv.ResumeService
}

func NewHandlers(service *resumesrv.ResumeService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires resume routes onto the app. All routes require a
// student account.
func RegisterRoutes(app *fiber.App, h *Handlers, studentOnly fiber.Handler) {
	api := app.Group("/api/resumes", studentOnly)
	api.Post("/", h.Upload)
	api.Get("/", h.List)
	api.Get("/:id", h.Get)
	api.Get("/:id/download", h.Download)
	api.Get("/:id/summary", h.Summary)
	api.Get("/:id/achievements", h.Achievements)
	api.Delete("/:id", h.Delete)
}

func (h *Handlers) Upload(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return resume.ErrInvalidData().WithDetail("reason", "missing multipart file field")
	}
	if fileHeader.Size > maxUploadBytes {
		return resume.ErrInvalidData().
			WithDetail("reason", "file too large").
			WithDetail("max_bytes", maxUploadBytes)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return resume.ErrUploadFailed()
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return resume.ErrUploadFailed()
	}

	req := resume.UploadRequest{
		CandidateID:      candidateID,
		FileName:         fileHeader.Filename,
		Data:             data,
		Kind:             resume.KindBase,
		DeactivateOthers: true,
	}
	if strings.EqualFold(c.FormValue("kind"), string(resume.KindTailored)) {
		req.Kind = resume.KindTailored
		req.DeactivateOthers = false
		req.TailoredForPostingID = kernel.PostingID(c.FormValue("posting_id"))
		req.BaseResumeID = kernel.ResumeID(c.FormValue("base_resume_id"))
	}

	resp, err := h.service.Upload(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handlers) List(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	resumes, err := h.service.List(c.Context(), candidateID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"resumes": resumes, "total": len(resumes)})
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	candidateID, _ := auth.GetAccountID(c)

	r, err := h.service.Get(c.Context(), kernel.ResumeID(c.Params("id")), candidateID)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

func (h *Handlers) Download(c *fiber.Ctx) error {
	candidateID, _ := auth.GetAccountID(c)

	url, err := h.service.DownloadURL(c.Context(), kernel.ResumeID(c.Params("id")), candidateID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}

func (h *Handlers) Summary(c *fiber.Ctx) error {
	candidateID, _ := auth.GetAccountID(c)

	resp, err := h.service.Summarize(c.Context(), kernel.ResumeID(c.Params("id")), candidateID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handlers) Achievements(c *fiber.Ctx) error {
	candidateID, _ := auth.GetAccountID(c)

	resp, err := h.service.KeyAchievements(c.Context(), kernel.ResumeID(c.Params("id")), candidateID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	candidateID, _ := auth.GetAccountID(c)

	if err := h.service.Delete(c.Context(), kernel.ResumeID(c.Params("id")), candidateID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
