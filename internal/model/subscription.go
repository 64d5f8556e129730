package model

import "time"

// Subscription kinds.
const (
	SubscriptionKindPublisher  = "publisher"
	SubscriptionKindJournalist = "journalist"
)

// Subscription records a reader's interest in a publisher or a journalist,
// stored in the `subscriptions` table. TargetID references a publishers.id
// or journalists.id depending on Kind. The (user_id, kind, target_id)
// triple carries a unique key so subscribing twice is a no-op at the
// database level.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – subscribing user.
//  Kind      – "publisher" or "journalist".
//  TargetID  – id of the publisher or journalist being followed.
//  CreatedAt – timestamp of creation.
type Subscription struct {
	ID        uint64    // subscriptions.id
	UserID    uint64    // subscriptions.user_id
	Kind      string    // subscriptions.kind
	TargetID  uint64    // subscriptions.target_id
	CreatedAt time.Time // subscriptions.created_at
}
