package fall

import "errors"

// Domain errors for parameter validation.
var (
	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("fall: parameter out of valid bounds")

	// ErrNilHandle indicates a body was registered without a visual handle.
	ErrNilHandle = errors.New("fall: body has no visual handle")
)
