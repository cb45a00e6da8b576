package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/trackerops/tracker-audit/pkg/audit"
	"github.com/trackerops/tracker-audit/pkg/tracker"
)

func WriteQueueTable(w io.Writer, queues []audit.QueueInfo) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tNAME\tLEAD")
	for _, q := range queues {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Key, q.Name, dash(q.Lead))
	}
	_ = tw.Flush()
}

func WriteQueueTableWide(w io.Writer, queues []audit.QueueInfo) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tNAME\tLEAD\tDEFAULT_TYPE\tDEFAULT_PRIORITY\tDESCRIPTION")
	for _, q := range queues {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Key, q.Name, dash(q.Lead), dash(q.DefaultType), dash(q.DefaultPriority), dash(q.Description))
	}
	_ = tw.Flush()
}

func WriteGrantTable(w io.Writer, grants []audit.Grant) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "QUEUE\tPERMISSION\tSUBJECT_TYPE\tSUBJECT\tMECHANISMS")
	for _, g := range grants {
		subject := g.SubjectDisplay
		if subject == "" {
			subject = g.SubjectID
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			g.QueueKey, g.PermissionType, g.SubjectType, subject, strings.Join(g.Mechanisms, ","))
	}
	_ = tw.Flush()
}

func WriteIssueTable(w io.Writer, issues []audit.AccessIssue) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "QUEUE\tNAME\tOWNER\tOWNER_EMAIL\tDELETED")
	for _, issue := range issues {
		deleted := ""
		if issue.Deleted {
			deleted = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			issue.QueueKey, dash(issue.QueueName), dash(issue.OwnerName), dash(issue.OwnerEmail), deleted)
	}
	_ = tw.Flush()
}

func WriteGroupTable(w io.Writer, groups []tracker.Group) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE")
	for _, g := range groups {
		name := g.Name
		if g.IsAllUsers() {
			name += " (all users)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", g.ID, name, g.Type)
	}
	_ = tw.Flush()
}

// WriteRunSummary prints the end-of-run totals block shown after an audit.
func WriteRunSummary(w io.Writer, result *audit.Result) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Run ID:\t%s\n", result.RunID)
	_, _ = fmt.Fprintf(tw, "Scope:\t%s\n", result.Scope)
	_, _ = fmt.Fprintf(tw, "Duration:\t%s\n", result.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(tw, "Queues audited:\t%d\n", len(result.Queues))
	_, _ = fmt.Fprintf(tw, "Grants found:\t%d\n", len(result.Grants))
	bySubject := map[string]int{}
	for _, g := range result.Grants {
		bySubject[g.SubjectType]++
	}
	for _, subjectType := range []string{audit.SubjectUser, audit.SubjectGroup, audit.SubjectAllUsersGroup} {
		if n := bySubject[subjectType]; n > 0 {
			_, _ = fmt.Fprintf(tw, "  %s grants:\t%d\n", subjectType, n)
		}
	}
	_, _ = fmt.Fprintf(tw, "Access issues:\t%d\n", len(result.Issues))
	if result.Interrupted {
		_, _ = fmt.Fprintf(tw, "Interrupted:\tyes (partial results)\n")
	}
	_ = tw.Flush()
}

// WriteStatistics prints the API client counters accumulated during the run.
func WriteStatistics(w io.Writer, stats tracker.Statistics) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Requests:\t%d\n", stats.TotalRequests)
	_, _ = fmt.Fprintf(tw, "Failed:\t%d\n", stats.FailedRequests)
	_, _ = fmt.Fprintf(tw, "Success rate:\t%.1f%%\n", stats.SuccessRate)
	_, _ = fmt.Fprintf(tw, "Average RPS:\t%.2f\n", stats.AverageRPS)
	_, _ = fmt.Fprintf(tw, "Throttle hits:\t%d\n", stats.RateLimitHits)
	if stats.RateLimitHits > 0 {
		_, _ = fmt.Fprintf(tw, "Final interval:\t%s\n", stats.CurrentInterval)
	}
	_ = tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
