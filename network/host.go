package network

import (
	"bytes"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/go-errors/errors"
)

type commandRunner func(name string, args ...string) (string, error)

func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Errorf("%v %v failed: %v: %v", name, strings.Join(args, " "),
			err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// configureAddress replaces the addresses of ifname with ip/subnet and,
// when a gateway is given, points the default route at it.
func configureAddress(run commandRunner, ifname string, ip net.IP, gateway net.IP, subnet net.IP) error {
	if ip == nil || subnet == nil {
		return errors.New("ip and subnet are required")
	}

	mask := net.IPMask(subnet.To4())
	if mask == nil {
		mask = net.IPMask(subnet.To16())
	}

	ones, bits := mask.Size()
	if bits == 0 {
		return errors.Errorf("subnet %v is not a valid mask", subnet)
	}

	if _, err := run("ip", "addr", "flush", "dev", ifname); err != nil {
		return err
	}

	if _, err := run("ip", "addr", "add", fmt.Sprintf("%v/%d", ip, ones), "dev", ifname); err != nil {
		return err
	}

	if gateway != nil && !gateway.IsUnspecified() {
		if _, err := run("ip", "route", "replace", "default", "via", gateway.String(), "dev", ifname); err != nil {
			return err
		}
	}

	return nil
}

// interfaceIP returns the first IPv4 address of ifname, or nil.
func interfaceIP(ifname string) net.IP {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil
	}

	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok {
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4
			}
		}
	}

	return nil
}
