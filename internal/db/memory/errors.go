package memory

import (
	"errors"
	"fmt"
)

var errInvalidJSON = errors.New("invalid JSON document")

func errUnsupportedPath(p string) error {
	return fmt.Errorf("path %q not supported, only root", p)
}
