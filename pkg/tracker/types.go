package tracker

import (
	"encoding/json"
	"strings"
)

// AllUsersGroupType is the numeric group type marking the organization-wide
// "all users" group.
const AllUsersGroupType = 7

// Reference is a shorthand object the API embeds wherever it points at
// another entity. Which fields are populated varies by endpoint.
type Reference struct {
	ID      string `json:"id,omitempty"`
	Key     string `json:"key,omitempty"`
	Display string `json:"display,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Label resolves a human-readable name for the reference, preferring
// display, then name, then id, then key.
func (r *Reference) Label() string {
	if r == nil {
		return ""
	}
	switch {
	case r.Display != "":
		return r.Display
	case r.Name != "":
		return r.Name
	case r.ID != "":
		return r.ID
	default:
		return r.Key
	}
}

// Queue is a workspace container in the tracker.
type Queue struct {
	Key             string     `json:"key"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Lead            *Reference `json:"lead,omitempty"`
	DefaultType     *Reference `json:"defaultType,omitempty"`
	DefaultPriority *Reference `json:"defaultPriority,omitempty"`
}

// User is an organization member.
type User struct {
	UID        string `json:"uid,omitempty"`
	TrackerUID string `json:"trackerUid,omitempty"`
	ID         string `json:"id,omitempty"`
	Display    string `json:"display,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Ident returns the identifier to use in permission lookups, preferring
// uid, then trackerUid, then id.
func (u User) Ident() string {
	switch {
	case u.UID != "":
		return u.UID
	case u.TrackerUID != "":
		return u.TrackerUID
	default:
		return u.ID
	}
}

// IsRobot reports whether the user looks like a service robot. This is a
// best-effort heuristic over the display name (English and Russian), not a
// reliable classification.
func (u User) IsRobot() bool {
	display := strings.ToLower(u.Display)
	return strings.Contains(display, "robot") || strings.Contains(display, "робот")
}

// Group is an organization group.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type int    `json:"type,omitempty"`
}

// IsAllUsers reports whether this is the distinguished all-users group.
func (g Group) IsAllUsers() bool {
	return g.Type == AllUsersGroupType
}

// AllUsersGroup scans a group list for the organization-wide all-users group.
// Returns nil when the list does not contain one.
func AllUsersGroup(groups []Group) *Group {
	for i := range groups {
		if groups[i].IsAllUsers() {
			return &groups[i]
		}
	}
	return nil
}

// PermissionDetail lists the paths a single permission type is granted
// through. Absent lists decode as empty slices, so callers only ever test
// for emptiness. Element shapes vary by deployment (plain ids or reference
// objects); only presence matters to the audit.
type PermissionDetail struct {
	Users  []json.RawMessage `json:"users"`
	Groups []json.RawMessage `json:"groups"`
	Roles  []json.RawMessage `json:"roles"`
}

// PermissionEntry is the permission map the API returns for one subject on
// one queue. Exactly one of User or Group is set, matching the endpoint that
// was queried.
type PermissionEntry struct {
	User        *Reference                  `json:"user,omitempty"`
	Group       *Reference                  `json:"group,omitempty"`
	Permissions map[string]PermissionDetail `json:"permissions"`
}

// AccessDenial carries the queue and owner metadata parsed from a 403
// response body, so a human can request access afterwards.
type AccessDenial struct {
	QueueKey   string
	QueueName  string
	OwnerName  string
	OwnerEmail string
	Deleted    bool
	Message    string
}

type accessDeniedBody struct {
	ErrorsData struct {
		Queue struct {
			Key     string `json:"key"`
			Display string `json:"display"`
			Deleted bool   `json:"deleted"`
		} `json:"queue"`
		Owner struct {
			Display string `json:"display"`
			Email   string `json:"email"`
		} `json:"owner"`
		PermissionDeniedMessage string `json:"permissionDeniedMessage"`
	} `json:"errorsData"`
	ErrorMessages []string `json:"errorMessages"`
}

// parseAccessDenial extracts denial metadata from a 403 body. Parsing is
// best-effort: a body that is not the expected shape yields nil rather than
// an error.
func parseAccessDenial(body []byte) *AccessDenial {
	if len(body) == 0 {
		return nil
	}
	var parsed accessDeniedBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	if parsed.ErrorsData.Queue.Key == "" && len(parsed.ErrorMessages) == 0 {
		return nil
	}
	message := parsed.ErrorsData.PermissionDeniedMessage
	if len(parsed.ErrorMessages) > 0 {
		message = parsed.ErrorMessages[0]
	}
	if message == "" {
		message = "access denied"
	}
	return &AccessDenial{
		QueueKey:   parsed.ErrorsData.Queue.Key,
		QueueName:  parsed.ErrorsData.Queue.Display,
		OwnerName:  parsed.ErrorsData.Owner.Display,
		OwnerEmail: parsed.ErrorsData.Owner.Email,
		Deleted:    parsed.ErrorsData.Queue.Deleted,
		Message:    message,
	}
}
