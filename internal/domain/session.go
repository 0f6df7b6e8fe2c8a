package domain

// Role is the access level carried in the credential's role claim.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity holds the denormalized fields persisted next to the credential.
type Identity struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// AuthResponse is the backend's login/register reply.
type AuthResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
