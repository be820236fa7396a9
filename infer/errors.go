package infer

import (
	"errors"
	"fmt"

	sent "github.com/revelaction/syncomp/sentence"
)

// ErrSingularDesign is returned when the design matrix of a fit is not of
// full column rank.
var ErrSingularDesign = errors.New("singular design matrix")

// InsufficientDataError reports a compared level with fewer than
// MinPerLevel observations.
type InsufficientDataError struct {
	Level sent.DocType
	Count int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("level %q has %d observations, need at least %d", e.Level, e.Count, MinPerLevel)
}
