package matchapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match/matchsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Handlers exposes match recommendations to students.
type Handlers struct {
	service *matchsrv.MatchService
}

func NewHandlers(service *matchsrv.MatchService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires match routes onto the app. All routes require a
// student account.
func RegisterRoutes(app *fiber.App, h *Handlers, studentOnly fiber.Handler) {
	api := app.Group("/api/matches", studentOnly)
	api.Get("/recommendations", h.Recommendations)
	api.Get("/:posting_id", h.Detail)
}

func (h *Handlers) Recommendations(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	f := matchsrv.RecommendFilter{
		MinScore:         queryFloat(c, "min_score"),
		MaxScore:         queryFloat(c, "max_score"),
		QualifiedOnly:    c.QueryBool("qualified_only", false),
		Skills:           splitList(c.Query("skills")),
		Location:         c.Query("location"),
		ExperienceLevel:  matchsrv.ExperienceLevel(c.Query("experience_level")),
		PostedWithinDays: queryInt(c, "posted_within_days", 0),
	}
	sortBy := matchsrv.RecommendSort(c.Query("sort", string(matchsrv.SortByScore)))
	order := matchsrv.SortOrder(c.Query("order"))
	opts := kernel.PaginationOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	page, err := h.service.Recommend(c.Context(), candidateID, f, sortBy, order, opts)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) Detail(c *fiber.Ctx) error {
	candidateID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	detail, err := h.service.Detail(c.Context(), candidateID, kernel.PostingID(c.Params("posting_id")))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func queryFloat(c *fiber.Ctx, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
