package workout

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownMuscleGroup = errors.New("unknown muscle group")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrCatalogUnavailable = errors.New("exercise catalog unavailable")
	ErrEmptyCatalog       = errors.New("exercise catalog is empty")
	// ErrInvalidRequest is returned by the Service for inputs it cannot act on.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDraftingDisabled is returned when no language model is configured.
	ErrDraftingDisabled = errors.New("exercise drafting is not configured")
)
