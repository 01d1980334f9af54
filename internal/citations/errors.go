package citations

import "errors"

var (
	ErrFetch = errors.New("bibliography fetch failed")
	ErrParse = errors.New("bibliography parse failed")
)
