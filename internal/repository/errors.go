// Package repository implements the data access layer on database/sql.
// This file defines sentinel errors reused across repositories so that
// handlers can distinguish failure scenarios without inspecting driver
// error strings themselves.  Not-found is reported as sql.ErrNoRows
// throughout, mirroring QueryRow semantics.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update collides with
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrAlreadyLiked is returned when a like insert collides with the
// unique (blog_id, user_id) index; the user has already liked the blog.
var ErrAlreadyLiked = errors.New("already liked")
