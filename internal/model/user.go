package model

import "time"

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the `users`
// table.  Staff accounts carry RoleAdmin; guests who register get
// RoleCustomer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, normalized email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – ADMIN or CUSTOMER.
//	IsActive     – whether the account may log in.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the verified caller identity attached to a request by the
// authentication middleware.  A zero Session means an anonymous caller.
type Session struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s Session) Authenticated() bool { return s.UserID != 0 }

// IsAdmin reports whether the session carries the ADMIN role claim.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Credentials is the register/login body.
type Credentials struct {
	Email    string `json:"email" validate:"required,looseemail"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// TokenPart is one signed or opaque token with its expiry.
type TokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// UserPart is the public view of a user.
type UserPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User    UserPart  `json:"user"`
	Access  TokenPart `json:"access"`
	Refresh TokenPart `json:"refresh"`
}
