package clock

import "errors"

// ErrNoReference is returned by ConvertTS and GetState when the clock has
// not yet observed a first reference point (no Update call, or a reset that
// hasn't been followed by one).
var ErrNoReference = errors.New("clock: no reference point")

// ErrOutOfBound is returned by ConvertTS when the converted timestamp would
// land further in the future than the caller's requested bound. The caller
// must discard the converted values in this case.
var ErrOutOfBound = errors.New("clock: converted timestamp out of bound")
