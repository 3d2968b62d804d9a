package network

import (
	"github.com/go-errors/errors"
	"golang.org/x/sys/unix"
)

func setHostname(name string) error {
	err := unix.Sethostname([]byte(name))
	if err != nil {
		return errors.Errorf("could not set hostname to %v: %v", name, err)
	}

	return nil
}
