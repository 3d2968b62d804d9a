package pairing

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus"
	"github.com/muka/go-bluetooth/bluez"
	"github.com/muka/go-bluetooth/bluez/profile"
	"github.com/muka/go-bluetooth/service"
)

type HandleRead = func() ([]byte, error)
type HandleWrite = func(value []byte) error

// characteristic describes one GATT characteristic of the provisioning
// service. A static value and a read handler are mutually exclusive.
type characteristic struct {
	uuid         string
	description  string
	value        []byte
	read         HandleRead
	write        HandleWrite
	presentation bool
}

func (c characteristic) flags() []string {
	var flags []string

	if c.read != nil || c.value != nil {
		flags = append(flags, bluez.FlagCharacteristicRead)
	}

	if c.write != nil {
		flags = append(flags, bluez.FlagCharacteristicWrite)
	}

	return flags
}

type appConfig struct {
	objectName  string
	objectPath  string
	localName   string
	serviceUuid string
}

// dispatcher routes bluez read and write callbacks to the characteristic
// handlers by characteristic uuid.
type dispatcher struct {
	reads  map[string]HandleRead
	writes map[string]HandleWrite
}

func newDispatcher(characteristics []characteristic) *dispatcher {
	d := &dispatcher{
		reads:  make(map[string]HandleRead),
		writes: make(map[string]HandleWrite),
	}

	for _, c := range characteristics {
		if c.read != nil {
			d.reads[c.uuid] = c.read
		}

		if c.write != nil {
			d.writes[c.uuid] = c.write
		}
	}

	return d
}

func (d *dispatcher) handleRead(app *service.Application, serviceUuid string, characteristicUuid string) ([]byte, error) {
	if read, ok := d.reads[characteristicUuid]; ok {
		return read()
	}

	return nil, service.NewCallbackError(service.CallbackNotRegistered, "")
}

func (d *dispatcher) handleWrite(app *service.Application, serviceUuid string, characteristicUuid string, value []byte) error {
	if write, ok := d.writes[characteristicUuid]; ok {
		return write(value)
	}

	return service.NewCallbackError(service.CallbackNotRegistered, "")
}

// newGattApp exports a single advertised primary service with the given
// characteristics and runs the application on the system bus.
func newGattApp(config appConfig, characteristics []characteristic) (*service.Application, error) {
	d := newDispatcher(characteristics)

	app, err := service.NewApplication(&service.ApplicationConfig{
		ObjectName: config.objectName,
		ObjectPath: dbus.ObjectPath(config.objectPath),
		LocalName:  config.localName,
		ReadFunc:   d.handleRead,
		WriteFunc:  d.handleWrite,
	})
	if err != nil {
		return nil, errors.Errorf("Could not create app: %v", err)
	}

	svc, err := app.CreateService(&profile.GattService1Properties{
		Primary: true,
		UUID:    config.serviceUuid,
	}, true)
	if err != nil {
		return nil, errors.Errorf("Failed to create service: %v", err)
	}

	err = app.AddService(svc)
	if err != nil {
		return nil, errors.Errorf("Failed to add service: %v", err)
	}

	for _, c := range characteristics {
		err := addCharacteristic(svc, c)
		if err != nil {
			return nil, errors.Errorf("Failed to add characteristic %v: %v", c.uuid, err)
		}
	}

	err = app.Run()
	if err != nil {
		return nil, errors.Errorf("Could not run app: %v", err)
	}

	return app, nil
}

func addCharacteristic(svc *service.GattService1, c characteristic) error {
	char, err := svc.CreateCharacteristic(&profile.GattCharacteristic1Properties{
		UUID:  c.uuid,
		Value: c.value,
		Flags: c.flags(),
	})
	if err != nil {
		return err
	}

	err = svc.AddCharacteristic(char)
	if err != nil {
		return err
	}

	if c.description != "" {
		// Characteristic User Description
		err := addDescriptor(char, "2901", []byte(c.description))
		if err != nil {
			return err
		}
	}

	if c.presentation {
		// Characteristic Presentation Format, utf8s
		err := addDescriptor(char, "2904", []byte{25})
		if err != nil {
			return err
		}
	}

	return nil
}

func addDescriptor(char *service.GattCharacteristic1, uuid string, value []byte) error {
	descriptor, err := char.CreateDescriptor(&profile.GattDescriptor1Properties{
		UUID:  uuid,
		Value: value,
		Flags: []string{
			bluez.FlagDescriptorRead,
		},
	})
	if err != nil {
		return err
	}

	return char.AddDescriptor(descriptor)
}
