// Package common defines shared constants and sentinel errors used across
// the SimuOrg client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Gateway-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrRequest      = errors.New("request failed")

	// Upload flow errors.
	ErrNoFileSelected = errors.New("no file selected")
)
