package targeting

import "errors"

// ErrInvalidInput is returned for a nil or zero-sized region. The retained
// snapshot is left untouched when it is returned.
var ErrInvalidInput = errors.New("targeting: invalid input region")
