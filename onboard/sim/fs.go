package sim

import (
	"errors"
	"os"
	"path"
	"syscall"

	"github.com/spf13/afero"
)

// driverFs passes reads straight through and routes writes via the tree so
// the simulated driver can check and react to them.
type driverFs struct {
	afero.Fs
	tree *Tree
}

func (fs *driverFs) Name() string {
	return "ev3dev-sim"
}

func (fs *driverFs) Create(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "create", Path: name, Err: syscall.EACCES}
}

func (fs *driverFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return fs.Fs.OpenFile(name, flag, perm)
	}
	if flag&os.O_CREATE != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}
	if readOnly[path.Base(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}

	// sysfs stores nothing until the driver accepts the value, so the
	// truncate is deferred to Write
	f, err := fs.Fs.OpenFile(name, flag&^os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	return &attrFile{File: f, tree: fs.tree, path: name}, nil
}

type attrFile struct {
	afero.File
	tree *Tree
	path string
}

func (f *attrFile) Write(p []byte) (n int, err error) {
	if err = f.tree.apply(f.path, string(p)); err != nil {
		if errors.Is(err, os.ErrInvalid) {
			err = syscall.EINVAL
		}
		return 0, &os.PathError{Op: "write", Path: f.path, Err: err}
	}

	if err = f.File.Truncate(0); err != nil {
		return 0, err
	}
	return f.File.WriteAt(p, 0)
}

func (f *attrFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}
