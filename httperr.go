package chx

import "github.com/mrhb33/chx/internal/httpexec"

// translateExecErr maps an internal/httpexec error onto the closed
// Error kind set (spec §7): a server-reported failure becomes
// KindBadResponse with its status/text preserved, anything else is a
// transport-level KindNetwork failure.
func translateExecErr(err error) *Error {
	if bad, ok := err.(*httpexec.ErrBadResponse); ok {
		return badResponse(bad.Status, bad.Text)
	}
	return wrapErr(KindNetwork, err, "request failed")
}
