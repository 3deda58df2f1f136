package sysfs

import (
	"context"
	"fmt"
	"time"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/spf13/afero"
)

const AddressAttribute = "address"

// ResolvedDevice is one enumerated instance directory, e.g. tacho-motor/motor1
// bound to address outB. It stays valid only while the hardware stays
// plugged in; drivers may pick another index after a reconnect.
type ResolvedDevice struct {
	Class     string
	Subsystem string
	Address   string
	Instance  string
	Index     int
}

func (d ResolvedDevice) String() string {
	return fmt.Sprintf("%s/%s@%s", d.Class, d.Instance, d.Address)
}

func instanceName(subsystem string, index int) string {
	return fmt.Sprintf("%s%d", subsystem, index)
}

// Instances lists <subsystem>0, <subsystem>1, ... up to the first missing index.
func (s *Store) Instances(class, subsystem string) (names []string, err error) {
	for i := 0; ; i++ {
		name := instanceName(subsystem, i)
		ok, err := afero.DirExists(s.fs, s.dir(class, name))
		if err != nil {
			return names, deverr.AttributeIOError{Op: "read", Class: class, Instance: name, Err: err}
		}
		if !ok {
			return names, nil
		}
		names = append(names, name)
	}
}

// Resolve finds the instance of class whose address attribute equals address.
// Instances are scanned by ascending index and the first match wins. Two
// instances sharing an address is undefined; the scan order only keeps the
// answer deterministic. An instance whose address can't be read is skipped.
func (s *Store) Resolve(class, subsystem, address string) (dev ResolvedDevice, err error) {
	names, err := s.Instances(class, subsystem)
	if err != nil {
		return
	}

	for i, name := range names {
		addr, rerr := s.Read(class, name, AddressAttribute)
		if rerr != nil || addr != address {
			continue
		}

		return ResolvedDevice{
			Class:     class,
			Subsystem: subsystem,
			Address:   address,
			Instance:  name,
			Index:     i,
		}, nil
	}

	return dev, deverr.DeviceNotPresentError{Class: class, Subsystem: subsystem, Address: address}
}

// WaitResolve calls Resolve every interval until the device shows up or ctx
// is done, in which case the last DeviceNotPresentError is returned.
// interval must be positive.
func (s *Store) WaitResolve(ctx context.Context, class, subsystem, address string, interval time.Duration) (dev ResolvedDevice, err error) {
	if interval <= 0 {
		return dev, fmt.Errorf("poll interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		dev, err = s.Resolve(class, subsystem, address)
		if err == nil {
			return
		}
		if _, ok := err.(deverr.DeviceNotPresentError); !ok {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Present reports whether dev's directory still exists and still carries the
// address it was resolved with.
func (s *Store) Present(dev ResolvedDevice) bool {
	addr, err := s.Read(dev.Class, dev.Instance, AddressAttribute)
	return err == nil && addr == dev.Address
}
