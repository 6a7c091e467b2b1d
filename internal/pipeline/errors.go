package pipeline

import "errors"

var (
	ErrBuild               = errors.New("builder stage failed")
	ErrProvision           = errors.New("runtime provisioning failed")
	ErrInstall             = errors.New("package installation failed")
	ErrNoArchive           = errors.New("no package archive produced")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
