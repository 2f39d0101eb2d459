package model

import "time"

// User represents an application user document as stored in the
// `users` collection. Usernames and emails are unique. PasswordHash
// holds the bcrypt digest; the plain credential is never persisted.
// Users are created at registration and never deleted.
//
// Fields:
//  ID           – hex document id (_id).
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}
