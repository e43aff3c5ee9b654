package domain

const (
	RoleAgent    = "Agent"
	RoleLandlord = "Landowners"
	RoleBuyer    = "User"
)

// User is the signed-in caller, taken from the backend session token.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
	Token string
}

func (u *User) IsAgent() bool {
	return u != nil && u.Role == RoleAgent
}
