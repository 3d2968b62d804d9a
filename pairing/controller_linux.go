package pairing

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/linux/btmgmt"
	"github.com/muka/go-bluetooth/service"
)

const (
	// Unique UUID suffix of the provisioning service
	uuidSuffix = "-5e0c-4c3a-9d5b-8f3a1c0d2b7e"

	// Prefix of the provisioning UUIDs
	wifiServiceUuidPrefix = "A1F0"

	// Where to expose the application
	objectName = "land.lightning"
	objectPath = "/wifid/pairing/service"

	defaultLocalName = "wifid"

	// Time the adapter needs after a reset
	resetSettleTime = 500 * time.Millisecond

	wifiServiceUuid           = wifiServiceUuidPrefix + "0000" + uuidSuffix
	networkAvailabilityStatus = wifiServiceUuidPrefix + "A101" + uuidSuffix
	ipAddress                 = wifiServiceUuidPrefix + "A102" + uuidSuffix
	wifiScanList              = wifiServiceUuidPrefix + "A103" + uuidSuffix
	wifiSsidString            = wifiServiceUuidPrefix + "A104" + uuidSuffix
	wifiPskString             = wifiServiceUuidPrefix + "A105" + uuidSuffix
	wifiConnectSignal         = wifiServiceUuidPrefix + "A106" + uuidSuffix
	wifiApMode                = wifiServiceUuidPrefix + "A107" + uuidSuffix
	networkMode               = wifiServiceUuidPrefix + "A108" + uuidSuffix
)

type Controller struct {
	log       Logger
	adapterId string
	app       *service.Application
}

func NewController(config *Config) (*Controller, error) {
	controller := &Controller{
		adapterId: config.AdapterId,
	}

	if config.Logger != nil {
		controller.log = config.Logger
	} else {
		controller.log = noopLogger{}
	}

	if config.Manager == nil {
		return nil, errors.New("a manager is required")
	}

	localName := config.LocalName
	if localName == "" {
		localName = defaultLocalName
	}

	p := newProvisioner(config.Manager, controller.log)

	characteristics := []characteristic{
		// Device Name
		{uuid: "2A00", value: []byte(localName), description: "Device Name", presentation: true},
		// Manufacturer Name String
		{uuid: "2A29", value: []byte("The Lightning Land"), description: "Manufacturer Name", presentation: true},
		{uuid: networkAvailabilityStatus, read: p.readNetworkAvailabilityStatus, description: "Network Availability Status"},
		{uuid: ipAddress, read: p.readIpAddress, description: "IP Address"},
		{uuid: wifiScanList, read: p.readWifiScanList, description: "Wi-Fi Scan List"},
		{uuid: wifiSsidString, read: p.readWifiSsidString, write: p.writeWifiSsidString, description: "Wi-Fi SSID"},
		{uuid: wifiPskString, write: p.writeWifiPskString, description: "Wi-Fi PSK"},
		{uuid: wifiConnectSignal, write: p.writeWifiConnectSignal, description: "Wi-Fi Connect Signal"},
		{uuid: wifiApMode, write: p.writeApMode, description: "Wi-Fi Access Point Mode"},
		{uuid: networkMode, read: p.readMode, description: "Network Mode"},
	}

	app, err := newGattApp(appConfig{
		objectName:  objectName,
		objectPath:  objectPath,
		localName:   localName,
		serviceUuid: wifiServiceUuid,
	}, characteristics)
	if err != nil {
		return nil, errors.Errorf("Could not start app: %v", err)
	}

	controller.app = app

	return controller, nil
}

func (c *Controller) Start() error {
	mgmt := btmgmt.NewBtMgmt(c.adapterId)
	err := mgmt.Reset()
	if err != nil {
		return errors.Errorf("Reset %s: %v", c.adapterId, err)
	}

	time.Sleep(resetSettleTime)

	gattManager, err := api.GetGattManager(c.adapterId)
	if err != nil {
		return errors.Errorf("Get gatt manager failed: %v", err)
	}

	err = gattManager.RegisterApplication(c.app.Path(), map[string]interface{}{})
	if err != nil {
		return errors.Errorf("Register failed: %v", err)
	}

	err = c.app.StartAdvertising(c.adapterId)
	if err != nil {
		return errors.Errorf("Failed to advertise: %v", err)
	}

	c.log.Infof("Advertising on %v", c.adapterId)

	return nil
}

func (c *Controller) Stop() error {
	err := c.app.StopAdvertising()
	if err != nil {
		return errors.Errorf("Could not stop advertising: %v", err)
	}

	gattManager, err := api.GetGattManager(c.adapterId)
	if err != nil {
		return errors.Errorf("Get gatt manager failed: %v", err)
	}

	err = gattManager.UnregisterApplication(c.app.Path())
	if err != nil {
		return errors.Errorf("Unregister failed: %v", err)
	}

	return nil
}
