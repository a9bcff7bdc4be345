// Package rendering renders stored training plans as Markdown documents.
package rendering

import (
	"errors"
	"fmt"
)

// ErrNilPlan is returned when there is no plan to render.
var ErrNilPlan = errors.New("no plan to render")

// Error reports a failure while preparing or executing the plan template.
type Error struct {
	Op  string // "load template", "parse template", "execute template"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("markdown %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
