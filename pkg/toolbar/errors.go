package toolbar

import "errors"

// Errors returned by toolbar operations. They are wrapped with the offending
// value, so compare with errors.Is.
var (
	ErrDuplicateProxy   = errors.New("duplicate expander proxy")
	ErrDuplicateID      = errors.New("duplicate item id")
	ErrUnknownReference = errors.New("unknown item reference")
	ErrUnknownPosition  = errors.New("unknown position")
	ErrUnknownItemType  = errors.New("unknown item type")
	ErrNotFound         = errors.New("item not found")
)
