// Package models contains the data records exchanged with the SimuOrg API.
package models

import "encoding/json"

// UserProfile is the record returned by the authentication endpoint. The
// client only ever displays Email and Name; the full server payload is kept
// in Raw so nothing is lost between login and rendering.
type UserProfile struct {
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Raw   json.RawMessage `json:"-"`
}

// ParseUserProfile decodes a raw user payload, preserving the original bytes.
func ParseUserProfile(raw json.RawMessage) (UserProfile, error) {
	var u UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return UserProfile{}, err
	}
	u.Raw = append(json.RawMessage(nil), raw...)
	return u, nil
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the user-creation request body. The server decides which
// fields it requires; the client forwards it verbatim.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}
