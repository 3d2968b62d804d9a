package connection

import (
	"sort"

	"github.com/the-lightning-land/wifid/network"
)

// Scanner lists nearby networks with their signal quality.
type Scanner struct {
	driver network.Driver
	log    Logger
}

func NewScanner(driver network.Driver, log Logger) *Scanner {
	if log == nil {
		log = noopLogger{}
	}

	return &Scanner{
		driver: driver,
		log:    log,
	}
}

// Scan returns the named networks the driver sees, best signal first. The
// Rssi of every returned entry holds its Quality score.
func (s *Scanner) Scan() ([]network.Network, error) {
	networks := []network.Network{}

	found, err := s.driver.ScanNetworks()
	if err != nil {
		return networks, fail(ReasonDriverError, "could not scan networks: %v", err)
	}

	for _, n := range found {
		if n.Ssid == "" {
			continue
		}

		n.Rssi = Quality(n.Rssi)
		networks = append(networks, n)
	}

	sort.SliceStable(networks, func(i, j int) bool {
		return networks[i].Rssi > networks[j].Rssi
	})

	s.log.Debugf("Found %v of %v scanned networks", len(networks), len(found))

	return networks, nil
}
