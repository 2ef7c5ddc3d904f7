package rankingsrv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the export file type.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// Export is a generated applicant report ready to stream to the client.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

var exportHeader = []string{
	"Candidate Name", "Email", "Phone", "Match Score %", "Top Matching Skills",
	"Experience (Years)", "Education Level", "Application Date",
	"Application Status", "Key Strengths", "Semantic Match %",
	"Skills Match %", "Experience Match %",
}

// ExportRanked generates the applicant report for a posting in the requested
// format, applying the same filters and sorting as the ranked view.
func (s *RankingService) ExportRanked(ctx context.Context, companyID kernel.AccountID, postingID kernel.PostingID, f RankFilter, sortBy RankSort, order SortOrder, format ExportFormat) (*Export, error) {
	p, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.Rank(ctx, companyID, postingID, f, sortBy, order)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		data, err := buildXLSX(ranked)
		if err != nil {
			return nil, err
		}
		return &Export{
			FileName:    exportFileName(p.Title, "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		data, err := buildCSV(ranked)
		if err != nil {
			return nil, err
		}
		return &Export{
			FileName:    exportFileName(p.Title, "csv"),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	}
}

func exportRow(rc *RankedCandidate) []string {
	return []string{
		rc.Name,
		rc.Email,
		rc.Phone,
		fmt.Sprintf("%d", rc.MatchScore),
		strings.Join(topN(rc.MatchedSkills, keyStrengthsLimit), ", "),
		fmt.Sprintf("%.1f", rc.ExperienceYears),
		rc.EducationLevel,
		rc.AppliedAt,
		string(rc.Status),
		strings.Join(rc.KeyStrengths, ", "),
		fmt.Sprintf("%.1f", rc.SemanticScore),
		fmt.Sprintf("%.1f", rc.SkillsScore),
		fmt.Sprintf("%.1f", rc.ExperienceScore),
	}
}

func buildCSV(ranked []RankedCandidate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range ranked {
		if err := w.Write(exportRow(&ranked[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Score cell fills: green at 80+, amber from 60, red below.
const (
	fillGreen = "C6EFCE"
	fillAmber = "FFEB9C"
	fillRed   = "FFC7CE"
)

func scoreFill(score int) string {
	switch {
	case score >= 80:
		return fillGreen
	case score >= 60:
		return fillAmber
	default:
		return fillRed
	}
}

func buildXLSX(ranked []RankedCandidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Applicants"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	// Phone numbers stay text so leading zeros survive.
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return nil, err
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	f.SetCellStyle(sheet, "A1", endHeader, headerStyle)

	fillStyles := map[string]int{}
	for i := range ranked {
		rowNum := i + 2
		for col, value := range exportRow(&ranked[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			f.SetCellValue(sheet, cell, value)
		}

		phoneCell, _ := excelize.CoordinatesToCellName(3, rowNum)
		f.SetCellStyle(sheet, phoneCell, phoneCell, textStyle)

		fill := scoreFill(ranked[i].MatchScore)
		styleID, ok := fillStyles[fill]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			})
			if err != nil {
				return nil, err
			}
			fillStyles[fill] = styleID
		}
		scoreCell, _ := excelize.CoordinatesToCellName(4, rowNum)
		f.SetCellStyle(sheet, scoreCell, scoreCell, styleID)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var fileNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func exportFileName(title, ext string) string {
	clean := fileNameSanitizer.ReplaceAllString(strings.TrimSpace(title), "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		clean = "applicants"
	}
	return fmt.Sprintf("%s_%s.%s", clean, time.Now().UTC().Format("20060102_150405"), ext)
}
