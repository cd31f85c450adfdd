package entities

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleShopkeeper Role = "shopkeeper"
	RoleAdmin      Role = "admin"
)

// User is an already-authenticated principal. Credential verification happens
// outside this service; we only resolve an opaque token to an identity.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Is reports whether the user's role is one of allowed.
func (u User) Is(allowed ...Role) bool {
	for _, r := range allowed {
		if u.Role == r {
			return true
		}
	}
	return false
}
