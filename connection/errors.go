package connection

import "errors"

var (
	errBadMagic   = errors.New("connection: bad magic")
	errBadVersion = errors.New("connection: unsupported version")
	errTruncated  = errors.New("connection: truncated payload")
)
