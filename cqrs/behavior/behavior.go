// Package behavior provides the cross-cutting steps the dispatcher runs
// around every handler: logging, transactions, panic recovery, timeouts,
// tracing and metadata injection.
package behavior

import (
	"github.com/code19m/errx"
)

func errorMap(err error) map[string]any {
	e := errx.AsErrorX(err)
	return map[string]any{
		"code":    e.Code(),
		"message": e.Error(),
		"type":    e.Type().String(),
		"trace":   e.Trace(),
		"fields":  e.Fields(),
		"details": e.Details(),
	}
}
