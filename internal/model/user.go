package model

import (
	"database/sql"
	"time"
)

// Role values stored in users.role.  Admins may create blogs and
// override ownership checks on every resource; regular users may
// only mutate resources they own.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user record as stored in the
// `users` table.  The password hash never leaves the server;
// handlers build separate response types when a public view with
// different fields is needed.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique generated handle (e.g. user-ab12cd).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – "admin" or "user".
//  FirstName    – optional profile field.
//  LastName     – optional profile field.
//  SocialLinks  – optional links shown on the public profile.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	FirstName    sql.NullString
	LastName     sql.NullString
	SocialLinks  SocialLinks
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SocialLinks groups the optional profile links.  Each column is
// nullable in the database; empty strings are treated as unset.
type SocialLinks struct {
	Website   sql.NullString
	Facebook  sql.NullString
	Instagram sql.NullString
	X         sql.NullString
	YouTube   sql.NullString
}
