package videobackend

import (
	"time"

	"github.com/spf13/afero"
	"gocv.io/x/gocv"
)

func OverloadFS(overload afero.Fs) func() {
	fsRef := fs
	fs = overload
	return func() { fs = fsRef }
}

func OverloadTimeNow(overload func() time.Time) func() {
	timeNowRef := timeNow
	timeNow = overload
	return func() { timeNow = timeNowRef }
}

func OverloadOpenVideoCapture(overload func(interface{}) (*gocv.VideoCapture, error)) func() {
	openVideoCaptureRef := openVideoCapture
	openVideoCapture = overload
	return func() { openVideoCapture = openVideoCaptureRef }
}

func EnsureDirectoryPathExists(path string) error {
	return ensureDirectoryPathExists(path)
}
