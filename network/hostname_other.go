//go:build !linux

package network

import "github.com/go-errors/errors"

func setHostname(name string) error {
	return errors.Errorf("setting the hostname to %v is only supported on linux", name)
}
