package model

import "time"

// Code is one entry of a code table, e.g. a species or a device make.
type Code struct {
	ID              int     `json:"id"`
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	LongDescription *string `json:"long_description,omitempty"`
}

// CodeHeader describes one code table.
type CodeHeader struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// CodeHeaderInput is one row of add_code_header.
type CodeHeaderInput struct {
	CodeHeaderName        string     `json:"code_header_name" validate:"required,max=20"`
	CodeHeaderTitle       string     `json:"code_header_title" validate:"required,max=40"`
	CodeHeaderDescription *string    `json:"code_header_description,omitempty"`
	ValidFrom             *time.Time `json:"valid_from,omitempty"`
	ValidTo               *time.Time `json:"valid_to,omitempty"`
}

// CodeInput is one row of add_code.
type CodeInput struct {
	CodeHeader      string     `json:"code_header" validate:"required"`
	CodeType        *string    `json:"code_type,omitempty"`
	CodeName        string     `json:"code_name" validate:"required"`
	CodeDescription string     `json:"code_description" validate:"required"`
	CodeSortOrder   *int       `json:"code_sort_order,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
}

// ListCodesRequest is GET /codes.
type ListCodesRequest struct {
	CodeHeader string `query:"codeHeader" validate:"required"`
	Page       int    `query:"page" validate:"min=0"`
}

func (r *ListCodesRequest) Validate() error {
	return validate.Struct(r)
}

// ListCodeHeadersRequest is GET /code-headers.
type ListCodeHeadersRequest struct {
	CodeType string `query:"codeType"`
}

func (r *ListCodeHeadersRequest) Validate() error {
	return nil
}

// AddCodesRequest is POST /codes.
type AddCodesRequest struct {
	Codes []CodeInput `json:"codes" validate:"required,min=1,dive"`
}

func (r *AddCodesRequest) Validate() error {
	return validate.Struct(r)
}
