package rankingapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/ranking/rankingsrv"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Handlers exposes applicant ranking and export endpoints for companies.
type Handlers struct {
	service *rankingsrv.RankingService
}

func NewHandlers(service *rankingsrv.RankingService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires ranking routes onto the app. All routes require a
// company account.
func RegisterRoutes(app *fiber.App, h *Handlers, companyOnly fiber.Handler) {
	api := app.Group("/api/postings/:posting_id", companyOnly)
	api.Get("/ranked", h.Rank)
	api.Get("/export", h.Export)
}

func (h *Handlers) Rank(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ranked, err := h.service.Rank(c.Context(), companyID,
		kernel.PostingID(c.Params("posting_id")), filterFrom(c), sortFrom(c), orderFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"candidates": ranked, "total": len(ranked)})
}

func (h *Handlers) Export(c *fiber.Ctx) error {
	companyID, ok := auth.GetAccountID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	format := rankingsrv.FormatCSV
	if strings.EqualFold(c.Query("format"), "xlsx") {
		format = rankingsrv.FormatXLSX
	}

	export, err := h.service.ExportRanked(c.Context(), companyID,
		kernel.PostingID(c.Params("posting_id")), filterFrom(c), sortFrom(c), orderFrom(c), format)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
	return c.Send(export.Data)
}

func filterFrom(c *fiber.Ctx) rankingsrv.RankFilter {
	f := rankingsrv.RankFilter{
		MinScore:       queryFloat(c, "min_score"),
		MaxScore:       queryFloat(c, "max_score"),
		MinExperience:  queryFloat(c, "min_experience"),
		MaxExperience:  queryFloat(c, "max_experience"),
		MinEducation:   c.Query("min_education"),
		ExcludeFlagged: c.QueryBool("exclude_flagged", false),
		OnlyApplicants: c.QueryBool("only_applicants", true),
	}
	if skills := c.Query("skills"); skills != "" {
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.MustHaveSkills = append(f.MustHaveSkills, s)
			}
		}
	}
	return f
}

func sortFrom(c *fiber.Ctx) rankingsrv.RankSort {
	return rankingsrv.RankSort(c.Query("sort", string(rankingsrv.SortByScore)))
}

func orderFrom(c *fiber.Ctx) rankingsrv.SortOrder {
	return rankingsrv.SortOrder(c.Query("order"))
}

func queryFloat(c *fiber.Ctx, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return v
}
