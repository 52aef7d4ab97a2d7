package netutil

import "errors"

// ErrFDLimit means the process cannot hold the requested number of open descriptors.
var ErrFDLimit = errors.New("file descriptor limit too low")
