package session

import "errors"

// Session audit domain errors
var (
	ErrNoOpenSession   = errors.New("no open session for this user")
	ErrSessionNotFound = errors.New("session audit entry not found")
)
