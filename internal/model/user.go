package model

// User represents a user account row.
type User struct {
	ID           int64   `db:"id"`
	Username     string  `db:"username"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	CreatedAt    string  `db:"created_at"`
	LastLogin    *string `db:"last_login"`
}

// RegisterRequest represents a user registration request.
// Pointer fields distinguish a missing key from an empty value.
type RegisterRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// LoginRequest represents a user login request. Username may hold either
// the username or the email of the account.
type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// UserSummary is the short user shape returned by register and login.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserProfile is the user shape returned by profile and list endpoints.
type UserProfile struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
	LastLogin *string `json:"last_login"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// Summary returns the short API shape of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Profile returns the profile API shape of u. The password hash never leaves the store.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
