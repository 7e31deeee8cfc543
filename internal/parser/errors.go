package parser

import "errors"

var (
	// ErrMissingContentBlock is returned when neither marker pair delimits a license body.
	ErrMissingContentBlock = errors.New("license content block not found")
	// ErrUnparseableDate is returned when a date token matches neither accepted dialect.
	ErrUnparseableDate = errors.New("unparseable license date")
	// ErrNoRecognizedProduct describes a body without product metadata. Parse never
	// returns it; it is used for warnings surfaced to callers.
	ErrNoRecognizedProduct = errors.New("no recognized product in license body")
)
