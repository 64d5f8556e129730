// Package repository contains data access logic separated from HTTP
// handlers. This file defines sentinel errors reused across repositories so
// higher layers can distinguish failure scenarios: a missing row must map to
// HTTP 404 while a uniqueness violation maps to 409. Values are compared
// with errors.Is.
package repository

import "errors"

// ErrUsernameExists is returned when registering a username that is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrPublisherNotFound is returned when a publishing house lookup matches
// no row.
var ErrPublisherNotFound = errors.New("publisher not found")

// ErrJournalistNotFound is returned when a journalist profile lookup
// matches no row.
var ErrJournalistNotFound = errors.New("journalist not found")

// ErrPostNotFound is returned when a post lookup matches no row. Handlers
// translate it into HTTP 404, which must stay distinct from 403.
var ErrPostNotFound = errors.New("post not found")

// ErrTokenNotFound is returned when no usable reset token matches a digest.
var ErrTokenNotFound = errors.New("token not found")

// ErrTokenUsed is returned when a consume loses the conditional update,
// meaning the token was already spent by an earlier or concurrent call.
var ErrTokenUsed = errors.New("token already used")
