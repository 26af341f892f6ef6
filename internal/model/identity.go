package model

// Identity is the authenticated user's profile as returned by the login
// endpoint. Role "admin" unlocks the article CRUD surface.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// DisplayName picks the name shown next to comments and in the profile.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Username != "" {
		return i.Username
	}
	return "Anonymous"
}
