// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let higher layers such as handlers
// and middleware distinguish failure scenarios: ErrNotFound signals that
// a referenced document does not exist (checked before any ownership
// comparison), while the *Exists errors surface unique-index violations
// at registration time.
package repository

import "errors"

// ErrNotFound is returned when a campground, review or user cannot be
// located by id. Handlers translate it into a flash notice plus a
// redirect on page routes, never into a raw fault.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when registration collides with an
// existing username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")
