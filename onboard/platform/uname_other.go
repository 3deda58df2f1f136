//go:build !linux && !darwin

package platform

import "errors"

func uname() (string, error) {
	return "", errors.New("unable to read the kernel release on this platform")
}
