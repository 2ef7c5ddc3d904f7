package adminapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume/resumesrv"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

var ErrRegistry = errx.NewRegistry("ADMIN")

var CodeInvalidCollection = ErrRegistry.Register("INVALID_COLLECTION", errx.TypeValidation,
	fiber.StatusBadRequest, "unknown vector collection")

// Handlers exposes maintenance endpoints: recompute triggers, queue
// inspection and vector collection management.
type Handlers struct {
	queue   precompute.Queue
	compute *precompute.Service
	resumes *resumesrv.ResumeService
	vectors vectorstore.Store
	matches match.Repository
}

func NewHandlers(
	queue precompute.Queue,
	compute *precompute.Service,
	resumes *resumesrv.ResumeService,
	vectors vectorstore.Store,
	matches match.Repository,
) *Handlers {
	return &Handlers{
		queue:   queue,
		compute: compute,
		resumes: resumes,
		vectors: vectors,
		matches: matches,
	}
}

// RegisterRoutes wires admin routes onto the app. All routes require an
// admin account.
func RegisterRoutes(app *fiber.App, h *Handlers, adminOnly fiber.Handler) {
	api := app.Group("/api/admin", adminOnly)
	api.Post("/recompute", h.Recompute)
	api.Post("/recompute/run", h.RecomputeNow)
	api.Get("/queue/stats", h.QueueStats)
	api.Get("/stats", h.Stats)
	api.Post("/collections/:collection/clear", h.ClearCollection)
}

type recomputeRequest struct {
	CandidateID kernel.AccountID `json:"candidate_id"`
	PostingID   kernel.PostingID `json:"posting_id"`
	Force       bool             `json:"force"`
}

func (r recomputeRequest) toJob() precompute.RecomputeJob {
	job := precompute.NewFullJob(r.Force)
	if !r.CandidateID.IsEmpty() {
		job.CandidateIDs = []kernel.AccountID{r.CandidateID}
	}
	if !r.PostingID.IsEmpty() {
		job.PostingIDs = []kernel.PostingID{r.PostingID}
	}
	return job
}

// Recompute queues a recompute job for the worker.
func (h *Handlers) Recompute(c *fiber.Ctx) error {
	var req recomputeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}

	job := req.toJob()
	if err := h.queue.Enqueue(c.Context(), job); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": job.JobID, "queued": true})
}

// RecomputeNow runs a recompute job synchronously and returns its stats.
func (h *Handlers) RecomputeNow(c *fiber.Ctx) error {
	var req recomputeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}

	stats, err := h.compute.Run(c.Context(), req.toJob())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Handlers) QueueStats(c *fiber.Ctx) error {
	stats, err := h.queue.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Handlers) Stats(c *fiber.Ctx) error {
	matches, err := h.matches.Count(c.Context())
	if err != nil {
		return err
	}
	resumeVectors, err := h.vectors.Count(c.Context(), vectorstore.CollectionResumes)
	if err != nil {
		return err
	}
	postingVectors, err := h.vectors.Count(c.Context(), vectorstore.CollectionPostings)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"matches":         matches,
		"resume_vectors":  resumeVectors,
		"posting_vectors": postingVectors,
	})
}

// ClearCollection drops a vector collection. Clearing resumes also nulls the
// stored embedding references and the match rows computed from them.
func (h *Handlers) ClearCollection(c *fiber.Ctx) error {
	switch vectorstore.Collection(c.Params("collection")) {
	case vectorstore.CollectionResumes:
		removed, err := h.resumes.ClearEmbeddings(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"collection": "resumes", "removed": removed})
	case vectorstore.CollectionPostings:
		removed, err := h.vectors.Clear(c.Context(), vectorstore.CollectionPostings)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"collection": "postings", "removed": removed})
	default:
		return ErrRegistry.New(CodeInvalidCollection).
			WithDetail("collection", c.Params("collection"))
	}
}
