package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	service     = "fi.w1.wpa_supplicant1"
	servicePath = dbus.ObjectPath("/fi/w1/wpa_supplicant1")

	interfaceIface = service + ".Interface"
	bssIface       = service + ".BSS"
	networkIface   = service + ".Network"
)

// Wpa is a client of wpa_supplicant's D-Bus API on the system bus.
type Wpa struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func New() *Wpa {
	return &Wpa{}
}

func (w *Wpa) Start() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	w.conn = conn
	w.obj = conn.Object(service, servicePath)

	return nil
}

func (w *Wpa) Stop() error {
	if w.conn == nil {
		return nil
	}

	err := w.conn.Close()
	if err != nil {
		return errors.Errorf("could not close system bus connection: %v", err)
	}

	w.conn = nil

	return nil
}

// GetInterface returns the wpa_supplicant interface managing ifname,
// asking wpa_supplicant to take over the device if it does not manage it yet.
func (w *Wpa) GetInterface(ifname string) (*Interface, error) {
	if w.conn == nil {
		return nil, errors.New("wpa is not started")
	}

	var path dbus.ObjectPath

	err := w.obj.Call(service+".GetInterface", 0, ifname).Store(&path)
	if err != nil {
		call := w.obj.Call(service+".CreateInterface", 0, map[string]interface{}{
			"Ifname": ifname,
		})
		if call.Err != nil {
			return nil, errors.Errorf("could not get or create interface %v: %v", ifname, call.Err)
		}

		if err := call.Store(&path); err != nil {
			return nil, errors.Errorf("could not store interface path: %v", err)
		}
	}

	return &Interface{
		wpa: w,
		obj: w.conn.Object(service, path),
	}, nil
}
