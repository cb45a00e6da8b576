package audit

import "sync"

// IssueTracker accumulates access issues, deduplicated by queue key. The
// first denial seen for a queue wins; later denials for the same queue are
// dropped. Check-and-insert is atomic so parallel resolvers keep the
// first-seen semantics.
type IssueTracker struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	issues []AccessIssue
}

func NewIssueTracker() *IssueTracker {
	return &IssueTracker{seen: make(map[string]struct{})}
}

// Record appends the issue unless one for the same queue key exists already.
// Returns whether the issue was kept.
func (t *IssueTracker) Record(issue AccessIssue) bool {
	if issue.QueueKey == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[issue.QueueKey]; ok {
		return false
	}
	t.seen[issue.QueueKey] = struct{}{}
	t.issues = append(t.issues, issue)
	return true
}

// Issues returns the accumulated issues in first-seen order.
func (t *IssueTracker) Issues() []AccessIssue {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AccessIssue, len(t.issues))
	copy(out, t.issues)
	return out
}

// Len returns how many distinct queues have issues recorded.
func (t *IssueTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.issues)
}
