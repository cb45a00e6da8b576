package audit

import (
	"fmt"
	"time"

	"github.com/trackerops/tracker-audit/pkg/tracker"
)

// Scope selects which subjects are audited on each queue.
type Scope string

const (
	// ScopeGroups audits every group in the organization.
	ScopeGroups Scope = "groups"
	// ScopeUsers audits every non-robot user.
	ScopeUsers Scope = "users"
	// ScopeBoth audits groups first, then users.
	ScopeBoth Scope = "both"
	// ScopeAllUsersGroup audits only the organization-wide all-users group.
	// This is the fast path: it never falls through to individual subjects.
	ScopeAllUsersGroup Scope = "all_users_group"
)

// ParseScope validates a scope string from flags or config.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGroups, ScopeUsers, ScopeBoth, ScopeAllUsersGroup:
		return Scope(s), nil
	}
	return "", fmt.Errorf("invalid scope %q (valid: %s, %s, %s, %s)",
		s, ScopeAllUsersGroup, ScopeGroups, ScopeUsers, ScopeBoth)
}

// Subject types attached to grants.
const (
	SubjectUser          = "user"
	SubjectGroup         = "group"
	SubjectAllUsersGroup = "all_users_group"
)

// Mechanisms a permission can be granted through.
const (
	MechanismDirect = "direct"
	MechanismUsers  = "users"
	MechanismGroup  = "group"
	MechanismRoles  = "roles"
)

// QueueInfo is the audited view of a queue, with reference fields resolved
// to display strings.
type QueueInfo struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Lead            string `json:"lead,omitempty"`
	DefaultType     string `json:"defaultType,omitempty"`
	DefaultPriority string `json:"defaultPriority,omitempty"`
}

// NewQueueInfo flattens an API queue object.
func NewQueueInfo(q tracker.Queue) QueueInfo {
	return QueueInfo{
		Key:             q.Key,
		Name:            q.Name,
		Description:     q.Description,
		Lead:            q.Lead.Label(),
		DefaultType:     q.DefaultType.Label(),
		DefaultPriority: q.DefaultPriority.Label(),
	}
}

// Grant records that a subject holds one permission type on one queue, with
// the set of mechanisms it is granted through. The audit never emits two
// grants for the same (queue, permission type, subject) triple.
type Grant struct {
	QueueKey       string   `json:"queueKey"`
	PermissionType string   `json:"permissionType"`
	SubjectType    string   `json:"subjectType"`
	SubjectID      string   `json:"subjectId"`
	SubjectDisplay string   `json:"subjectDisplay,omitempty"`
	Mechanisms     []string `json:"mechanisms"`
}

// AccessIssue is a queue the auditing principal could list but not inspect,
// with enough owner metadata to request access.
type AccessIssue struct {
	QueueKey   string `json:"queueKey"`
	QueueName  string `json:"queueName,omitempty"`
	OwnerName  string `json:"ownerName,omitempty"`
	OwnerEmail string `json:"ownerEmail,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Result is the aggregate handed to the reporting layer at the end of a run.
// On interruption it holds everything gathered so far.
type Result struct {
	RunID       string             `json:"runId"`
	Scope       Scope              `json:"scope"`
	StartedAt   time.Time          `json:"startedAt"`
	Duration    time.Duration      `json:"duration"`
	Queues      []QueueInfo        `json:"queues"`
	Grants      []Grant            `json:"grants"`
	Issues      []AccessIssue      `json:"issues"`
	Statistics  tracker.Statistics `json:"statistics"`
	Interrupted bool               `json:"interrupted,omitempty"`
}
