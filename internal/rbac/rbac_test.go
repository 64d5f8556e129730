package rbac

import (
	"errors"
	"testing"
)

func journalist(joined uint64) Actor {
	return Actor{
		UserID:            1,
		Roles:             map[Role]bool{RoleReader: true, RoleJournalist: true},
		JournalistID:      10,
		MemberPublisherID: joined,
	}
}

func editor(joined uint64) Actor {
	return Actor{
		UserID:            2,
		Roles:             map[Role]bool{RoleReader: true, RoleEditor: true},
		EditorID:          20,
		MemberPublisherID: joined,
	}
}

func publisher(house uint64) Actor {
	return Actor{
		UserID:      3,
		Roles:       map[Role]bool{RoleReader: true, RolePublisher: true},
		PublisherID: house,
	}
}

func reader() Actor {
	return Actor{UserID: 4, Roles: map[Role]bool{RoleReader: true}}
}

func TestAuthorize(t *testing.T) {
	ownPost := Target{AuthorID: 10, PublisherID: 100}
	otherPost := Target{AuthorID: 11, PublisherID: 100}
	foreignPost := Target{AuthorID: 12, PublisherID: 200}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		target Target
		want   error
	}{
		{"joined journalist creates", journalist(100), ActionCreatePost, Target{}, nil},
		{"unjoined journalist cannot create", journalist(0), ActionCreatePost, Target{}, ErrNotJoined},
		{"reader cannot create", reader(), ActionCreatePost, Target{}, ErrPermissionDenied},
		{"editor cannot create", editor(100), ActionCreatePost, Target{}, ErrPermissionDenied},

		{"author edits own post", journalist(100), ActionEditPost, ownPost, nil},
		{"journalist cannot edit colleague's post", journalist(100), ActionEditPost, otherPost, ErrPermissionDenied},
		{"editor edits any post in own house", editor(100), ActionEditPost, otherPost, nil},
		{"editor cannot edit across houses", editor(100), ActionEditPost, foreignPost, ErrPermissionDenied},
		{"publisher edits post in own house", publisher(100), ActionEditPost, otherPost, nil},
		{"publisher cannot edit another house", publisher(100), ActionEditPost, foreignPost, ErrPermissionDenied},

		{"author deletes own post", journalist(100), ActionDeletePost, ownPost, nil},
		{"editor deletes in own house", editor(100), ActionDeletePost, ownPost, nil},
		{"reader cannot delete", reader(), ActionDeletePost, ownPost, ErrPermissionDenied},

		{"journalist never approves, not even own draft", journalist(100), ActionApprovePost, ownPost, ErrPermissionDenied},
		{"editor approves in own house", editor(100), ActionApprovePost, ownPost, nil},
		{"editor cannot approve across houses", editor(100), ActionApprovePost, foreignPost, ErrPermissionDenied},
		{"publisher approves in own house", publisher(100), ActionApprovePost, ownPost, nil},
		{"publisher cannot approve another house", publisher(200), ActionApprovePost, ownPost, ErrPermissionDenied},
		{"reader cannot approve", reader(), ActionApprovePost, ownPost, ErrPermissionDenied},

		{"journalist may join a house", journalist(0), ActionJoinPublisher, Target{}, nil},
		{"editor may join a house", editor(0), ActionJoinPublisher, Target{}, nil},
		{"reader cannot join", reader(), ActionJoinPublisher, Target{}, ErrPermissionDenied},
		{"publisher cannot join", publisher(100), ActionJoinPublisher, Target{}, ErrPermissionDenied},

		{"reader subscribes", reader(), ActionSubscribe, Target{}, nil},
		{"journalist holds reader and may subscribe", journalist(100), ActionSubscribe, Target{}, nil},
		{"bare operating role cannot subscribe", Actor{UserID: 9, Roles: map[Role]bool{RoleEditor: true}, MemberPublisherID: 100}, ActionSubscribe, Target{}, ErrPermissionDenied},

		{"unknown action denied", reader(), Action("export_post"), Target{}, ErrPermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Authorize(tc.actor, tc.action, tc.target)
			if !errors.Is(got, tc.want) && got != tc.want {
				t.Fatalf("Authorize() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range Roles {
		if !ValidRole(string(r)) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	for _, s := range []string{"", "ADMIN", "reader"} {
		if ValidRole(s) {
			t.Errorf("ValidRole(%q) = true", s)
		}
	}
}
