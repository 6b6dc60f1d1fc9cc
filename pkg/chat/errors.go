package chat

import "errors"

// ErrInvalidEncoding is returned when an export is not valid UTF-8.
var ErrInvalidEncoding = errors.New("chat export is not valid UTF-8")
