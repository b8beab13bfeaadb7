package stream

import (
	"errors"

	"github.com/dshills/reactivemodel/rmerrors"
)

// ErrEmptySequence is returned by FirstAsync when the source completes
// without ever emitting a value.
var ErrEmptySequence = rmerrors.ErrEmptySequence

// ErrCancelled is returned by FirstAsync when its context is cancelled
// before a value arrives.
var ErrCancelled = errors.New("reactivemodel: operation cancelled")
