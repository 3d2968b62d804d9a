package connection

import (
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wifid/network"
)

func TestScanFiltersScoresAndSorts(t *testing.T) {
	driver := network.NewMockDriver()
	driver.Networks = []network.Network{
		{Ssid: "weak", Encryption: network.EncryptionOpen, Rssi: -90},
		{Ssid: "", Encryption: network.EncryptionOpen, Rssi: -30},
		{Ssid: "strong", Encryption: network.EncryptionWpa2Psk, Rssi: -40},
		{Ssid: "medium", Encryption: network.EncryptionWpaPsk, Rssi: -75},
	}

	networks, err := NewScanner(driver, nil).Scan()
	require.NoError(t, err)

	assert.Equal(t, []network.Network{
		{Ssid: "strong", Encryption: network.EncryptionWpa2Psk, Rssi: 100},
		{Ssid: "medium", Encryption: network.EncryptionWpaPsk, Rssi: 50},
		{Ssid: "weak", Encryption: network.EncryptionOpen, Rssi: 20},
	}, networks)
}

func TestScanNeverReturnsEmptyNames(t *testing.T) {
	driver := network.NewMockDriver()

	networks, err := NewScanner(driver, nil).Scan()
	require.NoError(t, err)

	for i, n := range networks {
		assert.NotEmpty(t, n.Ssid)

		if i > 0 {
			assert.GreaterOrEqual(t, networks[i-1].Rssi, n.Rssi)
		}
	}
}

func TestScanWithoutResults(t *testing.T) {
	driver := network.NewMockDriver()
	driver.Networks = nil

	networks, err := NewScanner(driver, nil).Scan()
	require.NoError(t, err)

	assert.NotNil(t, networks)
	assert.Empty(t, networks)
}

func TestScanDriverFailure(t *testing.T) {
	driver := network.NewMockDriver()
	driver.ScanErr = errors.New("radio busy")

	networks, err := NewScanner(driver, nil).Scan()
	require.Error(t, err)

	assert.Empty(t, networks)
	assert.Equal(t, ReasonDriverError, ReasonOf(err))
}
