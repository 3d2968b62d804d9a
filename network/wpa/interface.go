package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// State values of the Interface.State property.
const (
	StateDisconnected      = "disconnected"
	StateInactive          = "inactive"
	StateScanning          = "scanning"
	StateAuthenticating    = "authenticating"
	StateAssociating       = "associating"
	StateAssociated        = "associated"
	StateFourWayHandshake  = "4way_handshake"
	StateGroupHandshake    = "group_handshake"
	StateCompleted         = "completed"
	StateInterfaceDisabled = "interface_disabled"
	StateUnknown           = "unknown"
)

type Interface struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (i *Interface) String() string {
	return string(i.obj.Path())
}

func (i *Interface) Scan() error {
	call := i.obj.Call(interfaceIface+".Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}

	return nil
}

type ScanDoneClient struct {
	ScanDone <-chan bool
	Cancel   func()
}

// ScanDone subscribes to the ScanDone signal of this interface. Cancel must
// be called to release the subscription.
func (i *Interface) ScanDone() (*ScanDoneClient, error) {
	changeChan := make(chan bool, 1)
	signalChan := make(chan *dbus.Signal, 10)

	call := i.wpa.conn.BusObject().AddMatchSignal(interfaceIface, "ScanDone", dbus.WithMatchObjectPath(i.obj.Path()))
	if call.Err != nil {
		return nil, errors.Errorf("could not add signal: %v", call.Err)
	}

	i.wpa.conn.Signal(signalChan)

	go func() {
		defer close(changeChan)

		for signal := range signalChan {
			if signal.Name != interfaceIface+".ScanDone" || signal.Path != i.obj.Path() {
				continue
			}

			success := false
			if len(signal.Body) > 0 {
				success, _ = signal.Body[0].(bool)
			}

			select {
			case changeChan <- success:
			default:
			}
		}
	}()

	return &ScanDoneClient{
		ScanDone: changeChan,
		Cancel: func() {
			i.wpa.conn.RemoveSignal(signalChan)

			_ = i.wpa.conn.BusObject().RemoveMatchSignal(interfaceIface, "ScanDone", dbus.WithMatchObjectPath(i.obj.Path()))

			close(signalChan)
		},
	}, nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".BSSs")
	if err != nil {
		return nil, errors.Errorf("could not get bsss: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert bsss: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object(service, objectPath),
		})
	}

	return bsss, nil
}

// CurrentBSS returns the BSS the interface is associated with, or nil.
func (i *Interface) CurrentBSS() (*BSS, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".CurrentBSS")
	if err != nil {
		return nil, errors.Errorf("could not get current bss: %v", err)
	}

	objectPath, ok := v.Value().(dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert current bss: %v", v)
	}

	// wpa_supplicant reports "/" when not associated
	if objectPath == "/" || !objectPath.IsValid() {
		return nil, nil
	}

	return &BSS{
		obj: i.wpa.conn.Object(service, objectPath),
	}, nil
}

func (i *Interface) State() (string, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

// AddNetwork registers a network block. An empty psk configures an open
// network.
func (i *Interface) AddNetwork(ssid string, psk string) (*Network, error) {
	args := map[string]interface{}{
		"ssid": ssid,
	}

	if psk != "" {
		args["psk"] = psk
	} else {
		args["key_mgmt"] = "NONE"
	}

	return i.addNetwork(args)
}

// AddAccessPoint registers a network block that makes wpa_supplicant operate
// the interface as an access point.
func (i *Interface) AddAccessPoint(ssid string, psk string, frequency uint32) (*Network, error) {
	args := map[string]interface{}{
		"ssid":      ssid,
		"mode":      uint32(2),
		"frequency": frequency,
	}

	if psk != "" {
		args["psk"] = psk
		args["key_mgmt"] = "WPA-PSK"
		args["proto"] = "RSN"
		args["pairwise"] = "CCMP"
		args["group"] = "CCMP"
	} else {
		args["key_mgmt"] = "NONE"
	}

	return i.addNetwork(args)
}

func (i *Interface) addNetwork(args map[string]interface{}) (*Network, error) {
	call := i.obj.Call(interfaceIface+".AddNetwork", 0, args)
	if call.Err != nil {
		return nil, errors.Errorf("could not add network: %v", call.Err)
	}

	var objPath dbus.ObjectPath
	err := call.Store(&objPath)
	if err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Network{
		wpa: i.wpa,
		obj: i.wpa.conn.Object(service, objPath),
	}, nil
}

func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call(interfaceIface+".SelectNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not select network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveNetwork(net *Network) error {
	call := i.obj.Call(interfaceIface+".RemoveNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not remove network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call(interfaceIface+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	return nil
}

func (i *Interface) Disconnect() error {
	call := i.obj.Call(interfaceIface+".Disconnect", 0)
	if call.Err != nil {
		return errors.Errorf("could not disconnect: %v", call.Err)
	}

	return nil
}
