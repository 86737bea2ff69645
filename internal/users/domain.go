package users

import (
	"fmt"

	"github.com/gestion-users/gestion-users/internal/shared"
)

// User is a row of the utilisateur table. The password is stored and
// returned as plain text.
type User struct {
	ID       int64  `json:"id"`
	Prenom   string `json:"prenom"`
	Nom      string `json:"nom"`
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Input carries the five fields required by create and update. Update
// overwrites all of them.
type Input struct {
	Prenom   string `json:"prenom" validate:"required"`
	Nom      string `json:"nom" validate:"required"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

var (
	// ErrMissingFields is returned when any Input field is empty.
	ErrMissingFields = fmt.Errorf("%w: missing required field", shared.ErrValidation)
	// ErrInvalidID is returned when the path id is not an integer.
	ErrInvalidID = fmt.Errorf("%w: invalid id", shared.ErrValidation)
)
