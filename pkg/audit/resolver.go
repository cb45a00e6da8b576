package audit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/trackerops/tracker-audit/pkg/tracker"
)

const allUsersDisplayFallback = "All Users Group"

// Resolver walks candidate subjects for a queue and aggregates permission
// grants. User and group lists are fetched once and cached for the run;
// fetch failures degrade to an empty subject set and are retried on the
// next queue.
type Resolver struct {
	client *tracker.Client
	logger *zap.SugaredLogger
	issues *IssueTracker

	users           []tracker.User
	groups          []tracker.Group
	usersLoaded     bool
	groupsLoaded    bool
	allUsersGroupID string
}

func NewResolver(client *tracker.Client, logger *zap.SugaredLogger, issues *IssueTracker) *Resolver {
	return &Resolver{
		client: client,
		logger: logger.Named("resolver"),
		issues: issues,
	}
}

// Preload warms the subject caches the scope will need, so the per-queue
// loop starts with the expensive listings already done. Failures are logged
// and leave the cache cold.
func (r *Resolver) Preload(ctx context.Context, scope Scope) {
	if scope == ScopeGroups || scope == ScopeBoth || scope == ScopeAllUsersGroup {
		r.loadGroups(ctx)
	}
	if scope == ScopeUsers || scope == ScopeBoth {
		r.loadUsers(ctx)
	}
}

// ResolveQueueAccess audits one queue under the given scope. Per-subject
// lookup failures never abort the remaining subjects; only the fatal error
// classes propagate. Grants accumulated before a fatal error are returned
// alongside it.
func (r *Resolver) ResolveQueueAccess(ctx context.Context, queueKey string, scope Scope) ([]Grant, error) {
	if scope == ScopeAllUsersGroup {
		return r.resolveAllUsersGroup(ctx, queueKey)
	}

	var grants []Grant
	if scope == ScopeGroups || scope == ScopeBoth {
		groupGrants, err := r.resolveGroups(ctx, queueKey)
		grants = append(grants, groupGrants...)
		if err != nil {
			return grants, err
		}
	}
	if scope == ScopeUsers || scope == ScopeBoth {
		userGrants, err := r.resolveUsers(ctx, queueKey)
		grants = append(grants, userGrants...)
		if err != nil {
			return grants, err
		}
	}
	return grants, nil
}

// resolveAllUsersGroup audits only the distinguished all-users group. When
// the group cannot be identified no grants are emitted for this scope.
func (r *Resolver) resolveAllUsersGroup(ctx context.Context, queueKey string) ([]Grant, error) {
	if r.allUsersGroupID == "" {
		r.loadGroups(ctx)
	}
	if r.allUsersGroupID == "" {
		r.logger.Debugw("all-users group not identified, nothing to audit", "queue", queueKey)
		return nil, nil
	}

	entry, err := r.groupPermissions(ctx, queueKey, r.allUsersGroupID)
	if err != nil || entry == nil {
		return nil, err
	}
	display := entry.Group.Label()
	if display == "" {
		display = allUsersDisplayFallback
	}
	return subjectGrants(queueKey, SubjectAllUsersGroup, r.allUsersGroupID, display, entry), nil
}

func (r *Resolver) resolveGroups(ctx context.Context, queueKey string) ([]Grant, error) {
	var grants []Grant
	for _, group := range r.loadGroups(ctx) {
		if err := ctx.Err(); err != nil {
			return grants, err
		}
		if group.ID == "" {
			continue
		}
		entry, err := r.groupPermissions(ctx, queueKey, group.ID)
		if err != nil {
			return grants, err
		}
		if entry == nil {
			continue
		}
		display := entry.Group.Label()
		if display == "" {
			display = group.Name
		}
		subjectID := group.ID
		if entry.Group != nil && entry.Group.ID != "" {
			subjectID = entry.Group.ID
		}
		grants = append(grants, subjectGrants(queueKey, SubjectGroup, subjectID, display, entry)...)
	}
	return grants, nil
}

// resolveUsers audits non-robot users. A permission type counts only when it
// is granted directly or via a role; group-derived permissions are excluded
// here because groups are audited separately.
func (r *Resolver) resolveUsers(ctx context.Context, queueKey string) ([]Grant, error) {
	var grants []Grant
	for _, user := range r.loadUsers(ctx) {
		if err := ctx.Err(); err != nil {
			return grants, err
		}
		if user.IsRobot() {
			continue
		}
		userID := user.Ident()
		if userID == "" {
			continue
		}
		entry, err := r.userPermissions(ctx, queueKey, userID)
		if err != nil {
			return grants, err
		}
		if entry == nil {
			continue
		}
		grants = append(grants, userGrants(queueKey, userID, user.Display, entry)...)
	}
	return grants, nil
}

// groupPermissions wraps the lookup with the per-subject failure policy:
// denials are recorded as access issues and treated as no data, fatal errors
// propagate, everything else is logged and skipped.
func (r *Resolver) groupPermissions(ctx context.Context, queueKey, groupID string) (*tracker.PermissionEntry, error) {
	entry, err := r.client.Permissions().ForGroup(ctx, queueKey, groupID)
	if err == nil {
		return entry, nil
	}
	if denial, ok := tracker.IsPermissionDenied(err); ok {
		r.recordDenial(denial)
		return nil, nil
	}
	if tracker.IsFatal(err) || ctx.Err() != nil {
		return nil, err
	}
	r.logger.Debugw("could not get group permissions", "queue", queueKey, "group", groupID, "error", err)
	return nil, nil
}

func (r *Resolver) userPermissions(ctx context.Context, queueKey, userID string) (*tracker.PermissionEntry, error) {
	entry, err := r.client.Permissions().ForUser(ctx, queueKey, userID)
	if err == nil {
		return entry, nil
	}
	if denial, ok := tracker.IsPermissionDenied(err); ok {
		r.recordDenial(denial)
		return nil, nil
	}
	if tracker.IsFatal(err) || ctx.Err() != nil {
		return nil, err
	}
	r.logger.Debugw("could not get user permissions", "queue", queueKey, "user", userID, "error", err)
	return nil, nil
}

// recordDenial turns parsed 403 metadata into an access issue. A denial
// without metadata carries nothing actionable and is skipped.
func (r *Resolver) recordDenial(denial *tracker.AccessDenial) {
	if denial == nil {
		return
	}
	r.issues.Record(AccessIssue{
		QueueKey:   denial.QueueKey,
		QueueName:  denial.QueueName,
		OwnerName:  denial.OwnerName,
		OwnerEmail: denial.OwnerEmail,
		Deleted:    denial.Deleted,
		Message:    denial.Message,
	})
}

func (r *Resolver) loadUsers(ctx context.Context) []tracker.User {
	if r.usersLoaded {
		return r.users
	}
	users, err := r.client.Users().List(ctx)
	if err != nil {
		r.logger.Warnw("could not list users, proceeding without them", "error", err)
		return nil
	}
	r.users = users
	r.usersLoaded = true
	return r.users
}

func (r *Resolver) loadGroups(ctx context.Context) []tracker.Group {
	if r.groupsLoaded {
		return r.groups
	}
	groups, err := r.client.Groups().List(ctx)
	if err != nil {
		r.logger.Warnw("could not list groups, proceeding without them", "error", err)
		return nil
	}
	r.groups = groups
	r.groupsLoaded = true
	if allUsers := tracker.AllUsersGroup(groups); allUsers != nil {
		r.allUsersGroupID = allUsers.ID
		r.logger.Infow("identified all-users group", "id", allUsers.ID)
	}
	return r.groups
}

// subjectGrants emits one grant per permission type that reaches the subject
// through any mechanism. Used for group-typed subjects, where group, users,
// and roles sub-lists all count.
func subjectGrants(queueKey, subjectType, subjectID, display string, entry *tracker.PermissionEntry) []Grant {
	var grants []Grant
	for _, permType := range sortedPermissionTypes(entry) {
		detail := entry.Permissions[permType]
		var mechanisms []string
		if len(detail.Groups) > 0 {
			mechanisms = append(mechanisms, MechanismGroup)
		}
		if len(detail.Users) > 0 {
			mechanisms = append(mechanisms, MechanismUsers)
		}
		if len(detail.Roles) > 0 {
			mechanisms = append(mechanisms, MechanismRoles)
		}
		if len(mechanisms) == 0 {
			continue
		}
		grants = append(grants, Grant{
			QueueKey:       queueKey,
			PermissionType: permType,
			SubjectType:    subjectType,
			SubjectID:      subjectID,
			SubjectDisplay: display,
			Mechanisms:     mechanisms,
		})
	}
	return grants
}

// userGrants emits one grant per permission type granted to the user
// directly or via a role. Types reached only through group membership are
// skipped to avoid double-counting with the group audit.
func userGrants(queueKey, userID, userDisplay string, entry *tracker.PermissionEntry) []Grant {
	subjectID := userID
	display := userDisplay
	if entry.User != nil {
		if entry.User.ID != "" {
			subjectID = entry.User.ID
		}
		if entry.User.Display != "" {
			display = entry.User.Display
		}
	}

	var grants []Grant
	for _, permType := range sortedPermissionTypes(entry) {
		detail := entry.Permissions[permType]
		var mechanisms []string
		if len(detail.Users) > 0 {
			mechanisms = append(mechanisms, MechanismDirect)
		}
		if len(detail.Roles) > 0 {
			mechanisms = append(mechanisms, MechanismRoles)
		}
		if len(mechanisms) == 0 {
			continue
		}
		grants = append(grants, Grant{
			QueueKey:       queueKey,
			PermissionType: permType,
			SubjectType:    SubjectUser,
			SubjectID:      subjectID,
			SubjectDisplay: display,
			Mechanisms:     mechanisms,
		})
	}
	return grants
}

func sortedPermissionTypes(entry *tracker.PermissionEntry) []string {
	types := maps.Keys(entry.Permissions)
	slices.Sort(types)
	return types
}
