package model

import "time"

// Post kinds. Articles and newsletters share one table and one shape; the
// kind column tells them apart.
const (
	PostKindArticle    = "article"
	PostKindNewsletter = "newsletter"
)

// Post represents a written piece in the `posts` table. A post is created
// by a journalist under the publishing house they are joined to and starts
// unapproved (a draft). Approval flips the flag exactly once; there is no
// reverse transition.
//
// Fields:
//  ID           – primary key identifier.
//  Kind         – "article" or "newsletter".
//  Title        – title of the post.
//  Content      – body text.
//  JournalistID – author's journalist profile.
//  PublisherID  – house the post was submitted to.
//  Approved     – whether the post has been published.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Post struct {
	ID           uint64    // posts.id
	Kind         string    // posts.kind
	Title        string    // posts.title
	Content      string    // posts.content
	JournalistID uint64    // posts.journalist_id
	PublisherID  uint64    // posts.publisher_id
	Approved     bool      // posts.approved
	CreatedAt    time.Time // posts.created_at
	UpdatedAt    time.Time // posts.updated_at
}

// ValidPostKind reports whether s is one of the two known post kinds.
func ValidPostKind(s string) bool {
	return s == PostKindArticle || s == PostKindNewsletter
}
