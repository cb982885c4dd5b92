package protocol

import "errors"

var (
	ErrEncode = errors.New("protocol encode failed")
	ErrDecode = errors.New("protocol decode failed")
)
