//go:build linux || darwin

package platform

import (
	"golang.org/x/sys/unix"
)

func uname() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}
