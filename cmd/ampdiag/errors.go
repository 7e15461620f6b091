package main

import (
	"errors"
	"fmt"
)

var errFlag = errors.New("invalid flag value")

func errInvalidFlag(name, value string) error {
	return fmt.Errorf("%w: --%s=%q", errFlag, name, value)
}
