package history

import "errors"

var (
	errBadMagic   = errors.New("history: bad magic")
	errBadVersion = errors.New("history: unsupported version")
	errTruncated  = errors.New("history: truncated payload")
)
