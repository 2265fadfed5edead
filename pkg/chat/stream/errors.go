package stream

import "errors"

var errStreamAborted = errors.New("streaming turn aborted unexpectedly")
