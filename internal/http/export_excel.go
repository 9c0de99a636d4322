package httpapi

import (
	"bytes"
	"fmt"
	"strconv"

	"tilp-connect/internal/access"
	"tilp-connect/internal/service"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProgressExportHeader progress sheet columns.
var ProgressExportHeader = []string{"Date", "Child", "Discipline", "Goal Area", "Status", "Notes", "Media"}

// SessionPlanExportHeader session plan sheet columns.
var SessionPlanExportHeader = []string{
	"Date",
	"Lead Staff",
	"Support Staff",
	"Warm Up",
	"Learning Block",
	"Regulation Break",
	"Social Play",
	"Closing Routine",
	"Materials Needed",
	"Internal Notes",
}

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// GenerateDashboardExport writes the visible entries plus a summary sheet.
func GenerateDashboardExport(resp *service.DashboardResponse) ([]byte, error) {
	progress := sheet{
		name:   "Progress",
		header: ProgressExportHeader,
		widths: []float64{12, 20, 12, 18, 12, 40, 30},
	}
	for _, e := range resp.Entries {
		progress.rows = append(progress.rows, []any{e.Date, e.ChildName, e.Discipline, e.GoalArea, e.Status, e.Notes, e.MediaPath})
	}

	latest := string(resp.Summary.LatestStatus)
	if latest == "" {
		latest = "N/A"
	}
	child := resp.SelectedChild
	if child == "" {
		child = access.AllChildren
	}
	summary := sheet{
		name:   "Summary",
		header: []string{"Metric", "Value"},
		widths: []float64{20, 20},
		rows: [][]any{
			{"Child", child},
			{"Total Entries", resp.Summary.Total},
			{"Progress Rate", strconv.Itoa(resp.Summary.ProgressRate) + "%"},
			{"Latest Status", latest},
		},
	}
	return generateExcel(progress, summary)
}

// GenerateSessionPlanExport writes every session plan, oldest first.
func GenerateSessionPlanExport(plans []service.PlanItem) ([]byte, error) {
	s := sheet{
		name:   "Session Plans",
		header: SessionPlanExportHeader,
		widths: []float64{12, 15, 25, 30, 30, 30, 30, 30, 30, 30},
	}
	for _, p := range plans {
		s.rows = append(s.rows, []any{
			p.Date, p.LeadStaff, p.SupportStaff, p.WarmUp, p.LearningBlock,
			p.RegulationBreak, p.SocialPlay, p.ClosingRoutine, p.MaterialsNeeded, p.InternalNotes,
		})
	}
	return generateExcel(s)
}

func generateExcel(sheets ...sheet) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close explicitly on every path

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		index, err := f.NewSheet(s.name)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for col, header := range s.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range s.rows {
		for c, value := range row {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(s.name, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// freeze header row
	if err := f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}
