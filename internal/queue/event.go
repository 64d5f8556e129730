// Package queue defines message payloads exchanged over the message broker.
package queue

// PostApprovedEvent is published exactly once per draft-to-published
// transition of a post. It carries enough information for downstream
// consumers to notify subscribers and write audit lines without querying
// the primary database for the post itself.
type PostApprovedEvent struct {
	PostID         uint64 `json:"post_id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	JournalistName string `json:"journalist"`
	PublisherID    uint64 `json:"publisher_id"`
	PublisherName  string `json:"publisher"`
	ApprovedAt     string `json:"approved_at"`
}
