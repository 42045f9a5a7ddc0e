package domain

// UserProfile is the persisted profile record. ID is the internal
// store-assigned identifier; UserID is the identity-system subject and
// the only key exposed to callers.
type UserProfile struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Username    string            `json:"username"`
	Role        string            `json:"role"`
	Preferences map[string]string `json:"preferences"`
}

// UserEvent is the inbound "user created" message from the identity
// system. Never persisted, only used to seed a new profile.
type UserEvent struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// NewProfileFromEvent builds a fresh profile from an identity event with
// empty preferences.
func NewProfileFromEvent(evt *UserEvent) *UserProfile {
	return &UserProfile{
		UserID:      evt.UserID,
		Username:    evt.Username,
		Email:       evt.Email,
		FirstName:   evt.FirstName,
		LastName:    evt.LastName,
		Role:        evt.Role,
		Preferences: map[string]string{},
	}
}
