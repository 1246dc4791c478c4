package ports

import "errors"

// ErrNotFound is returned by repository operations that target a row that
// does not exist.
var ErrNotFound = errors.New("not found")
