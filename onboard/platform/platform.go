// Package platform checks that the running kernel ships ev3dev drivers new
// enough for the attribute layout used by the hardware package.
package platform

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

const (
	DRIVER_VERSION = ">= 2.0.0"
	releaseMarker  = "ev3dev-"
)

// Release describes an ev3dev kernel.
type Release struct {
	Kernel string          // full uname release, e.g. 4.14.117-ev3dev-2.3.5-ev3
	Driver *semver.Version // the ev3dev part, e.g. 2.3.5
	Board  string          // the trailing board suffix, e.g. ev3
}

// ParseRelease pulls the ev3dev version out of a kernel release string.
func ParseRelease(kernel string) (r Release, err error) {
	r.Kernel = kernel

	i := strings.Index(kernel, releaseMarker)
	if i < 0 {
		return r, fmt.Errorf("kernel %s is not an ev3dev kernel", kernel)
	}

	versionString := kernel[i+len(releaseMarker):]
	if j := strings.Index(versionString, "-"); j >= 0 {
		r.Board = versionString[j+1:]
		versionString = versionString[:j]
	}

	r.Driver, err = semver.NewVersion(versionString)
	if err != nil {
		return r, fmt.Errorf("kernel %s: %v", kernel, err)
	}

	return
}

// CheckRelease parses kernel and checks it against DRIVER_VERSION.
func CheckRelease(kernel string) (r Release, err error) {
	r, err = ParseRelease(kernel)
	if err != nil {
		return
	}

	constraint, err := semver.NewConstraint(DRIVER_VERSION)
	if err != nil {
		return
	}

	if !constraint.Check(r.Driver) {
		err = fmt.Errorf("unable to use kernel %s: ev3dev %s found, require %s", kernel, r.Driver, DRIVER_VERSION)
	}

	return
}

// Detect reads the running kernel release and checks it.
func Detect() (Release, error) {
	kernel, err := uname()
	if err != nil {
		return Release{}, err
	}
	return CheckRelease(kernel)
}
