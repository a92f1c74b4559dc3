package domain

import "time"

// Profile holds the optional, user editable profile fields.
type Profile struct {
	Name     string
	Gender   string
	Location string
	Website  string
}

// User represents an account holder of the system.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	Profile              Profile
	PasswordResetToken   string
	PasswordResetExpires *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ClearPasswordReset drops any pending reset token.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// ProfileView is the public representation of a profile.
type ProfileView struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// UserView is the public representation of a user. It never carries the
// password hash or reset token.
type UserView struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Profile   ProfileView `json:"profile"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// View strips secrets from the user.
func (u *User) View() UserView {
	return UserView{
		ID:    u.ID,
		Email: u.Email,
		Profile: ProfileView{
			Name:     u.Profile.Name,
			Gender:   u.Profile.Gender,
			Location: u.Profile.Location,
			Website:  u.Profile.Website,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Claims returns the identity snapshot embedded in signed tokens.
func (v UserView) Claims() map[string]any {
	return map[string]any{
		"id":    v.ID,
		"email": v.Email,
		"profile": map[string]any{
			"name":     v.Profile.Name,
			"gender":   v.Profile.Gender,
			"location": v.Profile.Location,
			"website":  v.Profile.Website,
		},
		"createdAt": v.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
