package auth

type Role string

const (
	RoleEmployee Role = "employee" // Tracks own attendance, applies for leave
	RoleManager  Role = "manager"  // Can decide leave and correct attendance
	RoleAdmin    Role = "admin"    // Full access
)

var validRoles = []string{string(RoleEmployee), string(RoleManager), string(RoleAdmin)}

func (r Role) Valid() bool {
	for _, v := range validRoles {
		if string(r) == v {
			return true
		}
	}
	return false
}

// CanManage reports whether the role may act on other accounts' records.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

// Identity is the acting account resolved from a verified token.
type Identity struct {
	AccountID string
	Role      Role
}

// TokenType distinguishes API access tokens from short-lived stream tokens.
type TokenType string

const (
	TokenAccess TokenType = "access"
	TokenStream TokenType = "sse"
)
