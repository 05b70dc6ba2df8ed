package entity

// Role is the closed set of authorization roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Source marks who created a product. Set once at creation from the
// creator's role and immutable afterwards.
type Source string

const (
	SourceAdmin Source = "ADMIN"
	SourceUser  Source = "USER"
)

// SourceForRole maps a creator role onto the product source.
func SourceForRole(r Role) Source {
	if r == RoleAdmin {
		return SourceAdmin
	}
	return SourceUser
}
