package entity

type UserRole string

const (
	RoleCustomer      UserRole = "CUSTOMER"
	RoleAdministrator UserRole = "ADMINISTRATOR"
)

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User is an account. GOOGLE accounts carry a random placeholder in
// PasswordHash that is never checked.
type User struct {
	Base
	Username           string       `db:"username"`
	Email              string       `db:"email"`
	PasswordHash       string       `db:"password"`
	FirstName          string       `db:"first_name"`
	LastName           string       `db:"last_name"`
	Address            string       `db:"address"`
	Role               UserRole     `db:"role"`
	IsLocked           bool         `db:"is_locked"`
	IsEnabled          bool         `db:"is_enabled"`
	Provider           AuthProvider `db:"provider"`
	VerificationToken  *string      `db:"verification_token"`
	ResetPasswordToken *string      `db:"reset_password_token"`
}

// CanSignIn reports whether session tokens may be issued for the user.
func (u *User) CanSignIn() bool {
	return u.IsEnabled && !u.IsLocked
}
