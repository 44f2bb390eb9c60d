package domain

// Identity is the authenticated caller as carried by a session claim.
type Identity struct {
	UserID int64
	Role   Role
}
