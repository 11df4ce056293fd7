package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownLocale   = errors.New("unknown locale")
	ErrInvalidBaseline = errors.New("baseline must be in (0,1)")
	ErrEmptyCatalog    = errors.New("catalog must not be empty")
)
