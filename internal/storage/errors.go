// AngelaMos | 2026
// errors.go

package storage

import (
	"errors"
)

var (
	ErrTooLarge        = errors.New("upload exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)
