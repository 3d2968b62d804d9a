package network

import (
	"net"
	"strings"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRunner struct {
	commands []string
	failOn   string
}

func (r *recordedRunner) run(name string, args ...string) (string, error) {
	command := strings.Join(append([]string{name}, args...), " ")
	r.commands = append(r.commands, command)

	if r.failOn != "" && strings.Contains(command, r.failOn) {
		return "", errors.Errorf("%v failed", command)
	}

	return "", nil
}

func TestConfigureAddress(t *testing.T) {
	tests := []struct {
		name    string
		ip      net.IP
		gateway net.IP
		subnet  net.IP
		want    []string
	}{
		{
			name:    "with gateway",
			ip:      net.IPv4(192, 168, 1, 50),
			gateway: net.IPv4(192, 168, 1, 1),
			subnet:  net.IPv4(255, 255, 255, 0),
			want: []string{
				"ip addr flush dev wlan0",
				"ip addr add 192.168.1.50/24 dev wlan0",
				"ip route replace default via 192.168.1.1 dev wlan0",
			},
		},
		{
			name:   "without gateway",
			ip:     net.IPv4(192, 168, 4, 1),
			subnet: net.IPv4(255, 255, 0, 0),
			want: []string{
				"ip addr flush dev wlan0",
				"ip addr add 192.168.4.1/16 dev wlan0",
			},
		},
		{
			name:    "unspecified gateway",
			ip:      net.IPv4(10, 0, 0, 2),
			gateway: net.IPv4zero,
			subnet:  net.IPv4(255, 0, 0, 0),
			want: []string{
				"ip addr flush dev wlan0",
				"ip addr add 10.0.0.2/8 dev wlan0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordedRunner{}

			err := configureAddress(runner.run, "wlan0", tt.ip, tt.gateway, tt.subnet)
			require.NoError(t, err)

			assert.Equal(t, tt.want, runner.commands)
		})
	}
}

func TestConfigureAddressRejectsInput(t *testing.T) {
	tests := []struct {
		name   string
		ip     net.IP
		subnet net.IP
	}{
		{name: "nil ip", subnet: net.IPv4(255, 255, 255, 0)},
		{name: "nil subnet", ip: net.IPv4(192, 168, 1, 50)},
		{name: "non canonical mask", ip: net.IPv4(192, 168, 1, 50), subnet: net.IPv4(255, 0, 255, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordedRunner{}

			err := configureAddress(runner.run, "wlan0", tt.ip, nil, tt.subnet)

			assert.Error(t, err)
			assert.Empty(t, runner.commands)
		})
	}
}

func TestConfigureAddressStopsOnFailure(t *testing.T) {
	runner := &recordedRunner{failOn: "addr add"}

	err := configureAddress(runner.run, "wlan0", net.IPv4(192, 168, 1, 50), net.IPv4(192, 168, 1, 1), net.IPv4(255, 255, 255, 0))

	assert.Error(t, err)
	assert.Len(t, runner.commands, 2)
}
