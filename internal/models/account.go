package models

import "time"

// Account represents a registered community member account
type Account struct {
	ID           int        `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	MembershipNo string     `json:"membership_no"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"` // member, admin
	Gender       string     `json:"gender,omitempty"`
	DOB          *time.Time `json:"dob,omitempty"`
	Education    string     `json:"education,omitempty"`
	Occupation   string     `json:"occupation,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	FamilyTreeID *int       `json:"family_tree_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName returns the display name used when seeding a tree's self node
func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == "admin"
}

// AccountSummary is the reduced shape returned when resolving linked members
type AccountSummary struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	MembershipNo string `json:"membership_no"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// RegisterRequest creates a new member account
type RegisterRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	MembershipNo string `json:"membership_no"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Gender       string `json:"gender,omitempty"`
	Education    string `json:"education,omitempty"`
	Occupation   string `json:"occupation,omitempty"`
}

// LoginRequest exchanges credentials for an access token
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Summary returns the reduced account shape for display
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		MembershipNo: a.MembershipNo,
		PhotoURL:     a.PhotoURL,
	}
}
