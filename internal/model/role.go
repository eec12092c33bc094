package model

// Role is the single capability value resolved at authentication time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// ResolveRole applies the precedence admin > seller > buyer.  It is the only
// place that precedence is encoded.  ok is false when the user holds none of
// the roles.
func ResolveRole(ids RoleIDs) (role Role, ok bool) {
	switch {
	case ids.AdminID != "":
		return RoleAdmin, true
	case ids.SellerID != "":
		return RoleSeller, true
	case ids.BuyerID != "":
		return RoleBuyer, true
	}
	return "", false
}

// Principal is the authenticated actor carried by the session token.
type Principal struct {
	UserID   string
	Email    string
	Name     string
	BuyerID  string
	SellerID string
	AdminID  string
	Role     Role
}

// NewPrincipal builds a Principal for u with its resolved role.
func NewPrincipal(u User, ids RoleIDs) (Principal, bool) {
	role, ok := ResolveRole(ids)
	if !ok {
		return Principal{}, false
	}
	return Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		BuyerID:  ids.BuyerID,
		SellerID: ids.SellerID,
		AdminID:  ids.AdminID,
		Role:     role,
	}, true
}
