package yamlnode

import "errors"

var (
	ErrLoad   = errors.New("yaml load error")
	ErrEmit   = errors.New("yaml emit error")
	ErrValue  = errors.New("value error")
	ErrFormat = errors.New("unknown value format")
)
