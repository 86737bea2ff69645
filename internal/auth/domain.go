package auth

import "github.com/gestion-users/gestion-users/internal/shared"

// User is the subset of a utilisateur row needed to open a session.
type User struct {
	ID     int64
	Prenom string
	Nom    string
	Login  string
	Role   string
}

// SessionUser projects the user into the value kept in the session.
func (u User) SessionUser() shared.SessionUser {
	return shared.SessionUser{ID: u.ID, Prenom: u.Prenom, Nom: u.Nom, Role: u.Role}
}
