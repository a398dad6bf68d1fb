package lang

import "errors"

// ErrInvalid indicates a caption language code that could not be
// recognized.
var ErrInvalid = errors.New("invalid language code")
