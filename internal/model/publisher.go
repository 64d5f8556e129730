package model

import "time"

// Publisher represents a publishing house in the `publishers` table. A
// publishing house is owned by exactly one user (the one who selected the
// Publisher role) and collects the journalists and editors that joined it.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user; unique, one house per user.
//  CreatedAt – timestamp of creation.
type Publisher struct {
	ID        uint64    // publishers.id
	UserID    uint64    // publishers.user_id
	CreatedAt time.Time // publishers.created_at
}

// Journalist is the journalist profile of a user, stored in the
// `journalists` table. PublisherID is null until the journalist joins a
// publishing house and is overwritten when they join another one; a
// journalist belongs to at most one house at a time.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user; unique, one profile per user.
//  PublisherID – house the journalist currently writes for (nullable).
//  CreatedAt   – timestamp of creation.
type Journalist struct {
	ID          uint64    // journalists.id
	UserID      uint64    // journalists.user_id
	PublisherID *uint64   // journalists.publisher_id (nullable)
	CreatedAt   time.Time // journalists.created_at
}

// Editor is the editor profile of a user, stored in the `editors` table.
// It mirrors Journalist: membership in a house is optional and exclusive.
type Editor struct {
	ID          uint64    // editors.id
	UserID      uint64    // editors.user_id
	PublisherID *uint64   // editors.publisher_id (nullable)
	CreatedAt   time.Time // editors.created_at
}

// Reader is the reader profile of a user, stored in the `readers` table.
// Readers have no house membership; the profile only marks that the user
// may subscribe to publishers and journalists.
type Reader struct {
	ID        uint64    // readers.id
	UserID    uint64    // readers.user_id
	CreatedAt time.Time // readers.created_at
}
