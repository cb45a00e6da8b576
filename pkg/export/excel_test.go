package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trackerops/tracker-audit/pkg/audit"
	"github.com/trackerops/tracker-audit/pkg/tracker"
)

func sampleResult() *audit.Result {
	return &audit.Result{
		RunID:     "run-abc",
		Scope:     audit.ScopeBoth,
		StartedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Duration:  90 * time.Second,
		Queues: []audit.QueueInfo{
			{Key: "DEV", Name: "Development", Lead: "Alice"},
			{Key: "OPS", Name: "Operations"},
		},
		Grants: []audit.Grant{
			{
				QueueKey:       "DEV",
				PermissionType: "write",
				SubjectType:    audit.SubjectUser,
				SubjectID:      "u1",
				SubjectDisplay: "Alice",
				Mechanisms:     []string{audit.MechanismDirect, audit.MechanismRoles},
			},
		},
		Issues: []audit.AccessIssue{
			{QueueKey: "SECRET", OwnerEmail: "bob@example.com", Deleted: true},
		},
		Statistics: tracker.Statistics{TotalRequests: 42, SuccessRate: 100},
	}
}

func TestNewWorkbookSheets(t *testing.T) {
	wb, err := NewWorkbook(sampleResult())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, wb.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t,
		[]string{sheetSummary, sheetQueues, sheetPermissions, sheetIssues},
		f.GetSheetList())
}

func TestWorkbookContent(t *testing.T) {
	wb, err := NewWorkbook(sampleResult())
	require.NoError(t, err)
	f := wb.File()

	runLabel, err := f.GetCellValue(sheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Run ID", runLabel)
	runID, err := f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "run-abc", runID)

	queueKey, err := f.GetCellValue(sheetQueues, "A2")
	require.NoError(t, err)
	assert.Equal(t, "DEV", queueKey)

	mechanisms, err := f.GetCellValue(sheetPermissions, "F2")
	require.NoError(t, err)
	assert.Equal(t, "direct,roles", mechanisms)

	ownerEmail, err := f.GetCellValue(sheetIssues, "D2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", ownerEmail)
	deleted, err := f.GetCellValue(sheetIssues, "E2")
	require.NoError(t, err)
	assert.Equal(t, "yes", deleted)
}

func TestWorkbookEmptyResult(t *testing.T) {
	wb, err := NewWorkbook(&audit.Result{RunID: "empty", Scope: audit.ScopeGroups})
	require.NoError(t, err)

	header, err := wb.File().GetCellValue(sheetPermissions, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Queue", header)
}
