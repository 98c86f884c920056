package sessionrepo

import "errors"

// ErrNotFound covers unknown, revoked and naturally expired sessions alike:
// once the key is gone there is no way to tell these cases apart.
var ErrNotFound = errors.New("session not found")
