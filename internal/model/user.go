package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a BCTW user as stored by add_user and listed by get_users.
type User struct {
	ID        *int    `json:"id,omitempty"`
	IDIR      *string `json:"idir,omitempty"`
	BCEID     *string `json:"bceid,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"firstname,omitempty"`
	LastName  *string `json:"lastname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	RoleType  *string `json:"role_type,omitempty"`
	IsOwner   *bool   `json:"is_owner,omitempty"`
}

// AddUserRequest is POST /users.
type AddUserRequest struct {
	User User   `json:"user" validate:"required"`
	Role string `json:"role" validate:"required,oneof=administrator owner observer editor"`
}

func (r *AddUserRequest) Validate() error {
	return validate.Struct(r)
}

// AssignCrittersRequest is POST /users/critters: grants the caller's managed
// user access to one or more critters for a period.
type AssignCrittersRequest struct {
	AnimalIDs OneOrMany[uuid.UUID] `json:"animalId" validate:"required,min=1"`
	Start     *time.Time           `json:"start" validate:"required"`
	End       *time.Time           `json:"end"`
}

func (r *AssignCrittersRequest) Validate() error {
	return validate.Struct(r)
}
