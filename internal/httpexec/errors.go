package httpexec

import "github.com/go-faster/errors"

// ErrBadResponse wraps a non-2xx server response; a trailing error after
// a 200 status is detected by the root package's cursor, not here.
// Status and Text carry the detail a caller needs to render
// Error::BadResponse (spec §4.4, §7); this package never returns the
// root chx.Error type so it stays usable without importing it.
type ErrBadResponse struct {
	Status int
	Text   string
}

func (e *ErrBadResponse) Error() string {
	return errors.Errorf("httpexec: server returned status %d: %s", e.Status, e.Text).Error()
}
