package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/trackerops/tracker-audit/pkg/audit"
)

const (
	sheetSummary     = "Summary"
	sheetQueues      = "Queues"
	sheetPermissions = "Access Permissions"
	sheetIssues      = "Access Issues"
)

// Workbook builds the report file for one audit result.
type Workbook struct {
	file        *excelize.File
	headerStyle int
}

// NewWorkbook renders all sheets for the result. Call SaveAs to persist.
func NewWorkbook(result *audit.Result) (*Workbook, error) {
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	wb := &Workbook{file: f, headerStyle: headerStyle}
	if err := wb.writeSummary(result); err != nil {
		return nil, err
	}
	if err := wb.writeQueues(result.Queues); err != nil {
		return nil, err
	}
	if err := wb.writePermissions(result.Grants); err != nil {
		return nil, err
	}
	if err := wb.writeIssues(result.Issues); err != nil {
		return nil, err
	}

	// The default sheet is replaced by Summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	return wb, nil
}

func (wb *Workbook) SaveAs(path string) error {
	if err := wb.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// File exposes the underlying workbook, used for streaming it as a mail
// attachment without touching disk.
func (wb *Workbook) File() *excelize.File {
	return wb.file
}

func (wb *Workbook) writeSummary(result *audit.Result) error {
	if _, err := wb.file.NewSheet(sheetSummary); err != nil {
		return err
	}
	rows := [][2]any{
		{"Run ID", result.RunID},
		{"Scope", string(result.Scope)},
		{"Started", result.StartedAt.Format(time.RFC3339)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
		{"Queues audited", len(result.Queues)},
		{"Grants found", len(result.Grants)},
		{"Access issues", len(result.Issues)},
		{"API requests", result.Statistics.TotalRequests},
		{"Failed requests", result.Statistics.FailedRequests},
		{"Success rate", fmt.Sprintf("%.1f%%", result.Statistics.SuccessRate)},
		{"Throttle hits", result.Statistics.RateLimitHits},
	}
	if result.Interrupted {
		rows = append(rows, [2]any{"Interrupted", "yes (partial results)"})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := wb.file.SetSheetRow(sheetSummary, cell, &[]any{row[0], row[1]}); err != nil {
			return err
		}
	}
	return wb.file.SetColWidth(sheetSummary, "A", "A", 18)
}

func (wb *Workbook) writeQueues(queues []audit.QueueInfo) error {
	headers := []any{"Key", "Name", "Lead", "Default Type", "Default Priority", "Description"}
	if err := wb.newTableSheet(sheetQueues, headers); err != nil {
		return err
	}
	for i, q := range queues {
		row := []any{q.Key, q.Name, q.Lead, q.DefaultType, q.DefaultPriority, q.Description}
		if err := wb.writeRow(sheetQueues, i+2, row); err != nil {
			return err
		}
	}
	return wb.file.SetColWidth(sheetQueues, "B", "F", 24)
}

func (wb *Workbook) writePermissions(grants []audit.Grant) error {
	headers := []any{"Queue", "Permission", "Subject Type", "Subject ID", "Subject", "Mechanisms"}
	if err := wb.newTableSheet(sheetPermissions, headers); err != nil {
		return err
	}
	for i, g := range grants {
		row := []any{
			g.QueueKey,
			g.PermissionType,
			g.SubjectType,
			g.SubjectID,
			g.SubjectDisplay,
			strings.Join(g.Mechanisms, ","),
		}
		if err := wb.writeRow(sheetPermissions, i+2, row); err != nil {
			return err
		}
	}
	return wb.file.SetColWidth(sheetPermissions, "C", "E", 22)
}

func (wb *Workbook) writeIssues(issues []audit.AccessIssue) error {
	headers := []any{"Queue", "Name", "Owner", "Owner Email", "Deleted", "Message"}
	if err := wb.newTableSheet(sheetIssues, headers); err != nil {
		return err
	}
	for i, issue := range issues {
		deleted := ""
		if issue.Deleted {
			deleted = "yes"
		}
		row := []any{issue.QueueKey, issue.QueueName, issue.OwnerName, issue.OwnerEmail, deleted, issue.Message}
		if err := wb.writeRow(sheetIssues, i+2, row); err != nil {
			return err
		}
	}
	return wb.file.SetColWidth(sheetIssues, "B", "F", 26)
}

// newTableSheet creates a sheet with a styled, frozen, filterable header row.
func (wb *Workbook) newTableSheet(name string, headers []any) error {
	if _, err := wb.file.NewSheet(name); err != nil {
		return err
	}
	if err := wb.file.SetSheetRow(name, "A1", &headers); err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := wb.file.SetCellStyle(name, "A1", lastCell, wb.headerStyle); err != nil {
		return err
	}
	if err := wb.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return wb.file.AutoFilter(name, "A1:"+lastCell, nil)
}

func (wb *Workbook) writeRow(sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return wb.file.SetSheetRow(sheet, cell, &values)
}
