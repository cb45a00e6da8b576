package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trackerops/tracker-audit/pkg/audit"
	"github.com/trackerops/tracker-audit/pkg/tracker"
)

func TestWriteQueueTable(t *testing.T) {
	queues := []audit.QueueInfo{
		{Key: "DEV", Name: "Development", Lead: "Alice"},
		{Key: "OPS", Name: "Operations"},
	}

	buf := &bytes.Buffer{}
	WriteQueueTable(buf, queues)

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "LEAD")
	assert.Contains(t, out, "DEV")
	assert.Contains(t, out, "Alice")
	// Missing lead renders as a dash.
	assert.Contains(t, out, "-")
}

func TestWriteGrantTable(t *testing.T) {
	grants := []audit.Grant{
		{
			QueueKey:       "DEV",
			PermissionType: "write",
			SubjectType:    audit.SubjectUser,
			SubjectID:      "u1",
			SubjectDisplay: "Alice",
			Mechanisms:     []string{audit.MechanismDirect, audit.MechanismRoles},
		},
		{
			QueueKey:       "DEV",
			PermissionType: "read",
			SubjectType:    audit.SubjectGroup,
			SubjectID:      "g1",
			Mechanisms:     []string{audit.MechanismGroup},
		},
	}

	buf := &bytes.Buffer{}
	WriteGrantTable(buf, grants)

	out := buf.String()
	assert.Contains(t, out, "direct,roles")
	assert.Contains(t, out, "Alice")
	// A grant without a display falls back to the subject id.
	assert.Contains(t, out, "g1")
}

func TestWriteIssueTable(t *testing.T) {
	issues := []audit.AccessIssue{
		{QueueKey: "SECRET", QueueName: "Secret Projects", OwnerName: "Bob", OwnerEmail: "bob@example.com", Deleted: true},
	}

	buf := &bytes.Buffer{}
	WriteIssueTable(buf, issues)

	out := buf.String()
	assert.Contains(t, out, "SECRET")
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "yes")
}

func TestWriteGroupTable(t *testing.T) {
	groups := []tracker.Group{
		{ID: "g1", Name: "Devs", Type: 1},
		{ID: "42", Name: "Everyone", Type: tracker.AllUsersGroupType},
	}

	buf := &bytes.Buffer{}
	WriteGroupTable(buf, groups)
	assert.Contains(t, buf.String(), "Everyone (all users)")
}

func TestWriteRunSummary(t *testing.T) {
	result := &audit.Result{
		RunID:       "run-123",
		Scope:       audit.ScopeBoth,
		Duration:    1512 * time.Millisecond,
		Queues: make([]audit.QueueInfo, 4),
		Grants: []audit.Grant{
			{SubjectType: audit.SubjectUser},
			{SubjectType: audit.SubjectUser},
			{SubjectType: audit.SubjectGroup},
		},
		Issues:      make([]audit.AccessIssue, 1),
		Interrupted: true,
	}

	buf := &bytes.Buffer{}
	WriteRunSummary(buf, result)

	out := buf.String()
	assert.Contains(t, out, "run-123")
	assert.Contains(t, out, "Queues audited:")
	assert.Contains(t, out, "Grants found:")
	assert.Contains(t, out, "user grants:")
	assert.Contains(t, out, "group grants:")
	assert.Contains(t, out, "partial results")
}

func TestWriteStatistics(t *testing.T) {
	stats := tracker.Statistics{
		TotalRequests:   120,
		FailedRequests:  2,
		SuccessRate:     98.3,
		AverageRPS:      4.71,
		RateLimitHits:   3,
		CurrentInterval: 500 * time.Millisecond,
	}

	buf := &bytes.Buffer{}
	WriteStatistics(buf, stats)

	out := buf.String()
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "98.3%")
	assert.Contains(t, out, "Throttle hits:")
	assert.Contains(t, out, "500ms")
}
