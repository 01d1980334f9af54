package mathtex

import "errors"

var (
	ErrNoEngine = errors.New("no math engine configured")
	ErrRender   = errors.New("math rendering failed")
)
