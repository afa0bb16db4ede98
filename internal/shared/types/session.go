package types

// User is the identity returned by a successful login.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SessionState is the persisted session snapshot. IsAuthenticated holds
// exactly when both User and Token are set.
type SessionState struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Valid reports whether the flag agrees with the user and token. A leftover
// user or token on a logged-out snapshot is as invalid as a flag without them.
func (s SessionState) Valid() bool {
	return s.IsAuthenticated == (s.User != nil && s.Token != "")
}

// Clone returns a deep copy.
func (s SessionState) Clone() SessionState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Redacted returns a copy without the bearer token, for clients that only
// display the session.
func (s SessionState) Redacted() SessionState {
	s = s.Clone()
	s.Token = ""
	return s
}
