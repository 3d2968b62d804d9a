package connection

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wifid/network"
)

// recordingSettings counts how credentials reach the store.
type recordingSettings struct {
	mtx         sync.Mutex
	credentials Credentials
	saves       int
	sets        int
}

func (s *recordingSettings) Information() Credentials {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.credentials
}

func (s *recordingSettings) SaveInformation(c Credentials) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.saves++
	s.credentials = c

	return nil
}

func (s *recordingSettings) SetInformation(c Credentials) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.sets++
	s.credentials = c
}

func newTestManager(driver *network.MockDriver, stored Credentials) (*Manager, *recordingSettings, *fakeClock) {
	clk := newFakeClock()
	settings := &recordingSettings{credentials: stored}

	m := New(&Config{
		Driver:             driver,
		Settings:           settings,
		Defaults:           Credentials{Ssid: "wifid", Pass: "lightning", ApMode: true},
		ConnectTimeout:     10 * time.Second,
		ConnectInterval:    500 * time.Millisecond,
		DisconnectTimeout:  3 * time.Second,
		DisconnectInterval: 100 * time.Millisecond,
		Clock:              clk,
	})

	return m, settings, clk
}

func TestReconnectStation(t *testing.T) {
	driver := network.NewMockDriver()
	m, settings, clk := newTestManager(driver, Credentials{})

	home := Credentials{Ssid: "home", Pass: "secret"}

	err := m.Reconnect(home, false)
	require.NoError(t, err)

	assert.Equal(t, ModeSTA, m.Mode())
	assert.False(t, m.IsApMode())
	assert.Equal(t, driver.StaIP, m.IP())
	assert.Equal(t, "home", m.Ssid())
	assert.True(t, m.IsConnected(true))
	assert.Equal(t, home, settings.Information())
	assert.Equal(t, 1, settings.sets)
	assert.Equal(t, 0, settings.saves)
	assert.Equal(t, time.Second, clk.Waited(), "two associating polls")
	assert.Equal(t, []network.MockAttempt{{Ssid: "home", Pass: "secret"}}, driver.Attempts)
}

func TestReconnectSavesWhenAsked(t *testing.T) {
	driver := network.NewMockDriver()
	m, settings, _ := newTestManager(driver, Credentials{})

	err := m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, settings.saves)
	assert.Equal(t, 0, settings.sets)
}

func TestReconnectAccessPoint(t *testing.T) {
	driver := network.NewMockDriver()
	m, settings, _ := newTestManager(driver, Credentials{})

	candy := Credentials{Ssid: "candy", Pass: "reckless", ApMode: true}

	err := m.Reconnect(candy, false)
	require.NoError(t, err)

	assert.Equal(t, ModeAP, m.Mode())
	assert.True(t, m.IsApMode())
	assert.Equal(t, driver.ApIP, m.IP())
	assert.Equal(t, "candy", m.Ssid())
	assert.Equal(t, candy, settings.Information())
	assert.Equal(t, 0, driver.Calls("Join"))
}

func TestReconnectSubstitutesStoredCredentials(t *testing.T) {
	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, Credentials{Ssid: "home", Pass: "secret"})

	err := m.Reconnect(Credentials{ApMode: true}, false)
	require.NoError(t, err)

	assert.Equal(t, []network.MockAttempt{{ApMode: true, Ssid: "home", Pass: "secret"}}, driver.Attempts)
}

func TestReconnectFallback(t *testing.T) {
	stored := Credentials{Ssid: "home", Pass: "secret"}

	tests := []struct {
		name         string
		attempt      Credentials
		wantAttempts []network.MockAttempt
	}{
		{
			name:    "no fallback when attempt equals stored",
			attempt: stored,
			wantAttempts: []network.MockAttempt{
				{Ssid: "home", Pass: "secret"},
			},
		},
		{
			name:    "fallback when attempt differs",
			attempt: Credentials{Ssid: "office", Pass: "hunter2"},
			wantAttempts: []network.MockAttempt{
				{Ssid: "office", Pass: "hunter2"},
				{Ssid: "home", Pass: "secret"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := network.NewMockDriver()
			driver.JoinPolls = -1

			m, settings, _ := newTestManager(driver, stored)

			err := m.Reconnect(tt.attempt, true)
			require.Error(t, err)

			assert.Equal(t, ReasonTimeout, ReasonOf(err))
			assert.Equal(t, tt.wantAttempts, driver.Attempts)
			assert.Equal(t, ModeNone, m.Mode())
			assert.Equal(t, stored, settings.Information())
			assert.Equal(t, 0, settings.saves)
			assert.Equal(t, 0, settings.sets)
		})
	}
}

func TestReconnectFallbackRestoresStoredWithoutSaving(t *testing.T) {
	stored := Credentials{Ssid: "home", Pass: "secret"}

	driver := network.NewMockDriver()
	driver.FailSoftAP = true

	m, settings, _ := newTestManager(driver, stored)

	err := m.Reconnect(Credentials{Ssid: "setup", Pass: "setup123", ApMode: true}, true)
	require.NoError(t, err)

	assert.Equal(t, ModeSTA, m.Mode())
	assert.Equal(t, "home", m.Ssid())
	assert.Equal(t, []network.MockAttempt{
		{ApMode: true, Ssid: "setup", Pass: "setup123"},
		{Ssid: "home", Pass: "secret"},
	}, driver.Attempts)
	assert.Equal(t, stored, settings.Information())
	assert.Equal(t, 0, settings.saves)
}

func TestReconnectRejectedConfig(t *testing.T) {
	stored := Credentials{Ssid: "home", Pass: "secret"}

	driver := network.NewMockDriver()
	driver.FailConfigStation = true

	m, _, _ := newTestManager(driver, stored)
	m.ConfigAddressSTA(net.IPv4(192, 168, 1, 50), net.IPv4(255, 255, 255, 0), net.IPv4(192, 168, 1, 1))

	err := m.Reconnect(stored, false)
	require.Error(t, err)

	assert.Equal(t, ReasonConfigRejected, ReasonOf(err))
	assert.Equal(t, 0, driver.Calls("Join"))
	assert.Equal(t, ModeNone, m.Mode())
}

func TestReconnectAppliesStaticAddress(t *testing.T) {
	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, Credentials{})

	static := net.IPv4(192, 168, 1, 50)
	m.ConfigAddressSTA(static, net.IPv4(255, 255, 255, 0), net.IPv4(192, 168, 1, 1))

	err := m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, driver.Calls("ConfigStation"))
	assert.Equal(t, 0, driver.Calls("ConfigSoftAP"))
	assert.True(t, static.Equal(m.IP()))
}

func TestReconnectSwitchesModes(t *testing.T) {
	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, Credentials{})

	require.NoError(t, m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, false))
	require.Equal(t, ModeSTA, m.Mode())

	require.NoError(t, m.Reconnect(Credentials{Ssid: "candy", Pass: "reckless", ApMode: true}, false))

	assert.Equal(t, ModeAP, m.Mode())
	assert.Equal(t, 1, driver.Calls("StopStation"))
	assert.Equal(t, driver.ApIP, m.IP())

	require.NoError(t, m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, false))

	assert.Equal(t, ModeSTA, m.Mode())
	assert.Equal(t, 1, driver.Calls("StopSoftAP"))
}

func TestReconnectAbortsWhenLinkStaysUp(t *testing.T) {
	stored := Credentials{Ssid: "home", Pass: "secret"}

	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, stored)

	require.NoError(t, m.Reconnect(stored, false))

	driver.StickyLink = true

	err := m.Reconnect(stored, false)
	require.Error(t, err)

	assert.Equal(t, ReasonAborted, ReasonOf(err))
	assert.Equal(t, ModeSTA, m.Mode())
	assert.Equal(t, 1, driver.Calls("Join"))
}

func TestDisconnectWithoutModeTouchesNothing(t *testing.T) {
	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, Credentials{})

	require.NoError(t, m.Disconnect())

	for _, method := range []string{"Status", "IsConnected", "StopSoftAP", "StopStation"} {
		assert.Equal(t, 0, driver.Calls(method), method)
	}

	assert.Equal(t, ModeNone, m.Mode())
}

func TestDisconnect(t *testing.T) {
	tests := []struct {
		name       string
		creds      Credentials
		setup      func(d *network.MockDriver)
		wantReason Reason
		wantMode   Mode
		wantWaited time.Duration
	}{
		{
			name:     "station",
			creds:    Credentials{Ssid: "home", Pass: "secret"},
			wantMode: ModeNone,
		},
		{
			name:     "access point",
			creds:    Credentials{Ssid: "candy", Pass: "reckless", ApMode: true},
			wantMode: ModeNone,
		},
		{
			name:  "driver fails but link is down",
			creds: Credentials{Ssid: "candy", Pass: "reckless", ApMode: true},
			setup: func(d *network.MockDriver) {
				d.FailStopSoftAP = true
			},
			wantMode: ModeNone,
		},
		{
			name:  "driver fails and link stays up",
			creds: Credentials{Ssid: "home", Pass: "secret"},
			setup: func(d *network.MockDriver) {
				d.FailStopStation = true
			},
			wantReason: ReasonDriverError,
			wantMode:   ModeSTA,
			wantWaited: 3 * time.Second,
		},
		{
			name:  "driver succeeds but link stays up",
			creds: Credentials{Ssid: "home", Pass: "secret"},
			setup: func(d *network.MockDriver) {
				d.StickyLink = true
			},
			wantReason: ReasonTimeout,
			wantMode:   ModeSTA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := network.NewMockDriver()
			driver.JoinPolls = 0

			m, _, clk := newTestManager(driver, Credentials{})
			require.NoError(t, m.Reconnect(tt.creds, false))

			if tt.setup != nil {
				tt.setup(driver)
			}

			err := m.Disconnect()

			assert.Equal(t, tt.wantReason, ReasonOf(err))
			assert.Equal(t, tt.wantMode, m.Mode())
			assert.Equal(t, tt.wantWaited, clk.Waited())
		})
	}
}

func TestBegin(t *testing.T) {
	driver := network.NewMockDriver()
	clk := newFakeClock()
	settings := &recordingSettings{}

	m := New(&Config{
		Driver:   driver,
		Settings: settings,
		Defaults: Credentials{Ssid: "wifid", Pass: "lightning", ApMode: true},
		Hostname: "candy",
		Clock:    clk,
	})

	require.NoError(t, m.Begin())

	assert.Equal(t, "candy", driver.Hostname)
	assert.Equal(t, ModeAP, m.Mode())
	assert.Equal(t, "wifid", m.Ssid())
	assert.Equal(t, 0, settings.saves)
	assert.Equal(t, Credentials{Ssid: "wifid", Pass: "lightning", ApMode: true}, settings.Information())
}

func TestReconnectStoredAndDefault(t *testing.T) {
	stored := Credentials{Ssid: "home", Pass: "secret"}

	driver := network.NewMockDriver()
	m, settings, _ := newTestManager(driver, stored)

	require.NoError(t, m.ReconnectDefault(false))
	assert.Equal(t, ModeAP, m.Mode())
	assert.Equal(t, "wifid", settings.Information().Ssid)

	settings.SetInformation(stored)

	require.NoError(t, m.ReconnectStored(true))
	assert.Equal(t, ModeSTA, m.Mode())
	assert.Equal(t, "home", m.Ssid())
	assert.Equal(t, 1, settings.saves)
}

func TestStatusSnapshot(t *testing.T) {
	driver := network.NewMockDriver()
	m, _, _ := newTestManager(driver, Credentials{})

	assert.Equal(t, Status{Mode: ModeNone}, m.Status())

	require.NoError(t, m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, false))

	status := m.Status()

	assert.Equal(t, ModeSTA, status.Mode)
	assert.Equal(t, "home", status.Ssid)
	assert.Equal(t, driver.StaIP, status.IP)
	assert.True(t, status.Connected)
}

func TestSharedStatusCache(t *testing.T) {
	driver := network.NewMockDriver()
	clk := newFakeClock()
	cache := NewStatusCache(driver, time.Second, clk)

	a := New(&Config{Driver: driver, StatusCache: cache, Clock: clk})
	b := New(&Config{Driver: driver, StatusCache: cache, Clock: clk})

	driver.SetConnected(true)

	assert.True(t, a.IsConnected(false))
	assert.True(t, b.IsConnected(false))
	assert.Equal(t, 1, driver.Calls("Status"))
}

func TestWifiList(t *testing.T) {
	m, _, _ := newTestManager(network.NewMockDriver(), Credentials{})

	networks, err := m.WifiList()
	require.NoError(t, err)

	assert.Equal(t, []string{"candy", "lightning", "cafe"}, ssids(networks))
}

func TestScanAndHostnameDuringConnect(t *testing.T) {
	driver := network.NewMockDriver()
	driver.JoinPolls = -1

	clk := newGatedClock()

	m := New(&Config{
		Driver:          driver,
		Clock:           clk,
		ConnectTimeout:  time.Second,
		ConnectInterval: 500 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() {
		done <- m.Reconnect(Credentials{Ssid: "home", Pass: "secret"}, false)
	}()

	select {
	case <-clk.waiting:
	case <-time.After(5 * time.Second):
		t.Fatal("connect sequence never started polling")
	}

	networks, err := m.WifiList()
	require.NoError(t, err)
	assert.Equal(t, []string{"candy", "lightning", "cafe"}, ssids(networks))

	m.SetHostname("candy")
	assert.Equal(t, 1, driver.Calls("SetHostname"))

	close(clk.gate)

	select {
	case err := <-done:
		assert.Equal(t, ReasonTimeout, ReasonOf(err))
	case <-time.After(5 * time.Second):
		t.Fatal("connect sequence did not finish")
	}
}

func ssids(networks []network.Network) []string {
	names := make([]string, 0, len(networks))

	for _, n := range networks {
		names = append(names, n.Ssid)
	}

	return names
}
