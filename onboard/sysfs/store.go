// Package sysfs reads and writes ev3dev device attributes.
//
// Every device is a directory under a class directory, e.g.
// /sys/class/tacho-motor/motor0, and every attribute is a small text file
// inside it. Values are never cached; each call opens the file again since
// the driver updates some of them (state, position) on its own.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	deverr "github.com/CodedInternet/goev3/onboard/errors"
	"github.com/spf13/afero"
)

const DefaultRoot = "/sys/class"

type Store struct {
	fs   afero.Fs
	root string
}

// NewStore returns a store rooted at root on the given filesystem.
func NewStore(fs afero.Fs, root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{fs: fs, root: root}
}

// OpenStore returns a store over the real filesystem.
func OpenStore(root string) *Store {
	return NewStore(afero.NewOsFs(), root)
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) dir(class, instance string) string {
	return filepath.Join(s.root, class, instance)
}

func (s *Store) path(class, instance, attr string) string {
	return filepath.Join(s.root, class, instance, attr)
}

// Read returns the attribute content with surrounding whitespace removed.
func (s *Store) Read(class, instance, attr string) (value string, err error) {
	raw, err := afero.ReadFile(s.fs, s.path(class, instance, attr))
	if err != nil {
		return "", deverr.AttributeIOError{Op: "read", Class: class, Instance: instance, Attribute: attr, Err: err}
	}

	return strings.TrimSpace(string(raw)), nil
}

func (s *Store) ReadInt(class, instance, attr string) (value int, err error) {
	str, err := s.Read(class, instance, attr)
	if err != nil {
		return
	}

	return ParseInt(attr, str)
}

// ReadList splits the attribute on whitespace. Runs of spaces and a trailing
// newline never produce empty entries.
func (s *Store) ReadList(class, instance, attr string) (values []string, err error) {
	str, err := s.Read(class, instance, attr)
	if err != nil {
		return
	}

	return SplitList(str), nil
}

// Write stores value in a single write. Attributes are never created and a
// failed write is not retried: repeating a command like run-forever could
// move the motor twice.
func (s *Store) Write(class, instance, attr, value string) error {
	f, err := s.fs.OpenFile(s.path(class, instance, attr), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return deverr.AttributeIOError{Op: "write", Class: class, Instance: instance, Attribute: attr, Err: err}
	}

	_, err = f.Write([]byte(value))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return deverr.AttributeIOError{Op: "write", Class: class, Instance: instance, Attribute: attr, Err: err}
	}

	return nil
}

func (s *Store) WriteInt(class, instance, attr string, value int) error {
	return s.Write(class, instance, attr, strconv.Itoa(value))
}

// ParseInt converts attribute content to an int.
func ParseInt(attr, value string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, deverr.AttributeFormatError{Attribute: attr, Value: value, Want: "integer", Err: err}
	}
	return i, nil
}

func SplitList(value string) []string {
	return strings.Fields(value)
}
