// Package rbac decides whether an actor may perform an action on a target.
// The decision is a pure function of the actor's persisted role profiles and
// house memberships; nothing here touches the database or the request. The
// role and action sets are closed: adding a role means editing this file,
// never probing for the presence of a profile attribute somewhere else.
package rbac

import "errors"

// Role is one of the four closed roles. Reader is additive; a user holds at
// most one of the three operating roles (Journalist, Editor, Publisher) at a
// time on top of it.
type Role string

const (
	RoleReader     Role = "READER"
	RoleJournalist Role = "JOURNALIST"
	RoleEditor     Role = "EDITOR"
	RolePublisher  Role = "PUBLISHER"
)

// Roles lists every known role in seeding order.
var Roles = []Role{RoleReader, RoleJournalist, RoleEditor, RolePublisher}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleReader, RoleJournalist, RoleEditor, RolePublisher:
		return true
	}
	return false
}

// Action is one of the closed set of guarded operations.
type Action string

const (
	ActionCreatePost    Action = "create_post"
	ActionEditPost      Action = "edit_post"
	ActionDeletePost    Action = "delete_post"
	ActionApprovePost   Action = "approve_post"
	ActionJoinPublisher Action = "join_publisher"
	ActionSubscribe     Action = "subscribe"
)

// Sentinel decisions. ErrPermissionDenied must stay distinct from any
// not-found error so clients cannot probe resource existence through the
// error type. ErrNotJoined marks the one special DENY: a journalist who has
// an operating role but no active house membership.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotJoined        = errors.New("not joined to a publisher")
)

// Actor is the authenticated caller as assembled from the store for the
// current request. IDs are zero when the corresponding profile or
// membership does not exist.
type Actor struct {
	UserID            uint64
	Roles             map[Role]bool
	JournalistID      uint64 // journalist profile id, 0 if none
	EditorID          uint64 // editor profile id, 0 if none
	PublisherID       uint64 // house owned by this user, 0 if none
	MemberPublisherID uint64 // house joined as journalist/editor, 0 if unjoined
}

// Has reports whether the actor holds the given role.
func (a Actor) Has(r Role) bool { return a.Roles[r] }

// Target scopes a post-directed action. AuthorID is the journalist profile
// that wrote the post, PublisherID the house it was submitted to. Actions
// without a post target (join, subscribe) pass the zero Target.
type Target struct {
	AuthorID    uint64
	PublisherID uint64
}

// Authorize applies the decision table. It returns nil for ALLOW and a
// sentinel error for DENY. The operating role is evaluated explicitly for
// each action; holding Reader alongside never widens post permissions, and
// scope mismatches (wrong house) are denied rather than silently narrowed.
func Authorize(a Actor, action Action, t Target) error {
	switch action {
	case ActionCreatePost:
		if !a.Has(RoleJournalist) {
			return ErrPermissionDenied
		}
		if a.MemberPublisherID == 0 {
			return ErrNotJoined
		}
		if t.PublisherID != 0 && t.PublisherID != a.MemberPublisherID {
			return ErrPermissionDenied
		}
		return nil

	case ActionEditPost, ActionDeletePost:
		// Author can always touch their own post.
		if a.Has(RoleJournalist) && a.JournalistID != 0 && a.JournalistID == t.AuthorID {
			return nil
		}
		return houseScoped(a, t)

	case ActionApprovePost:
		// Journalists never approve, not even their own drafts.
		return houseScoped(a, t)

	case ActionJoinPublisher:
		if a.Has(RoleJournalist) || a.Has(RoleEditor) {
			return nil
		}
		return ErrPermissionDenied

	case ActionSubscribe:
		if a.Has(RoleReader) {
			return nil
		}
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// houseScoped allows editors acting within the house they joined and
// publishers acting within the house they own.
func houseScoped(a Actor, t Target) error {
	if a.Has(RoleEditor) && a.MemberPublisherID != 0 && a.MemberPublisherID == t.PublisherID {
		return nil
	}
	if a.Has(RolePublisher) && a.PublisherID != 0 && a.PublisherID == t.PublisherID {
		return nil
	}
	return ErrPermissionDenied
}
