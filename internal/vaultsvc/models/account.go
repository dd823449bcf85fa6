package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a login identity. Role is fixed at creation;
// the single admin account is seeded by bootstrap.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
