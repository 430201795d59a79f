package eyaml

import "errors"

var (
	// ErrCommandUnavailable indicates the eyaml binary cannot be found or run.
	ErrCommandUnavailable = errors.New("eyaml command unavailable")
	// ErrTransformFailure indicates eyaml produced no usable output.
	ErrTransformFailure = errors.New("eyaml transform failed")
)
