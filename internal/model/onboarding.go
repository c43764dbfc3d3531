package model

import "time"

// Onboarding access states.
const (
	AccessPending = "pending"
	AccessGranted = "granted"
	AccessDenied  = "denied"
)

// OnboardingUser is the identity a prospective user submits.
type OnboardingUser struct {
	Domain    string  `json:"domain" validate:"required,oneof=idir bceid"`
	Username  string  `json:"username" validate:"required"`
	FirstName string  `json:"firstname" validate:"required"`
	LastName  string  `json:"lastname" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	RoleType  string  `json:"role_type" validate:"required"`
	Reason    *string `json:"reason,omitempty"`
}

// SubmitOnboardingRequest is POST /onboarding.
type SubmitOnboardingRequest struct {
	User OnboardingUser `json:"user" validate:"required"`
}

func (r *SubmitOnboardingRequest) Validate() error {
	return validate.Struct(r)
}

// HandleOnboardingRequest is POST /onboarding/handle: an administrator
// grants or denies a pending request.
type HandleOnboardingRequest struct {
	OnboardingID int    `json:"onboarding_id" validate:"required,min=1"`
	Access       string `json:"access" validate:"required,oneof=granted denied"`
	RoleType     string `json:"role_type" validate:"required"`
}

func (r *HandleOnboardingRequest) Validate() error {
	return validate.Struct(r)
}

// OnboardingStatusRequest is GET /onboarding/status.
type OnboardingStatusRequest struct {
	Domain string `query:"domain" validate:"required,oneof=idir bceid"`
}

func (r *OnboardingStatusRequest) Validate() error {
	return validate.Struct(r)
}

// OnboardingStatus is the latest onboarding state of an identity.
type OnboardingStatus struct {
	Access    string     `json:"access"`
	Email     string     `json:"email"`
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"`
}
