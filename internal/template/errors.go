package template

import "errors"

// ErrUnknown indicates an invalid output template name was specified.
var ErrUnknown = errors.New("unknown template")
