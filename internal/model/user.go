package model

// User represents an identity row in the `User` table.  Role membership is
// not stored on the user itself; it is expressed by the presence of Admin,
// Seller or Buyer rows referencing the user.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (column `password`).
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// RoleIDs holds the role-marker row ids attached to a user.  Empty strings
// mean the user does not hold that role.
type RoleIDs struct {
	AdminID  string
	SellerID string
	BuyerID  string
}

// UserWithRole is a row of the admin user listing.
type UserWithRole struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
