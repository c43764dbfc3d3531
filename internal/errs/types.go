package errs

import "strings"

// FieldError is a field-level validation error.
//
//	{ "field": "device_id", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells the client what to do next.
type ActionType string

const (
	// ActionTypeRedirect asks the client to navigate to Value.
	ActionTypeRedirect ActionType = "redirect"

	// ActionTypeOnboard asks the client to start the onboarding flow; sent
	// when an authenticated identity has no BCTW user yet.
	ActionTypeOnboard ActionType = "onboard"
)

// Action is an optional instruction for the client.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the JSON error body of the API.
//
// Override marks messages that are safe to show to end users as-is, such
// as exceptions raised by stored functions.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError, regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
