package render

import "errors"

var ErrRender = errors.New("render failed")
