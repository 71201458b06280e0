package store

import "errors"

// ErrConflict is returned when a version-guarded write finds the stored
// version has advanced past the caller's expected version. The caller must
// re-read before deciding whether to retry; the store never retries on its
// own, since blindly reapplying a stale intent can overwrite another user's
// mutation.
var ErrConflict = errors.New("version conflict")

// ErrNotFound is returned when the target record no longer exists.
var ErrNotFound = errors.New("not found")
