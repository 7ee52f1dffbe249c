package videobackend_test

import (
	"context"
	"errors"
	"image"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/camdoubler/pkg/video/videoframe"
	"gocv.io/x/gocv"
)

func TestVideoBackendDefaultBackend(t *testing.T) {
	is := is.New(t)
	is.True(videobackend.Default() != nil)
	is.True(videobackend.Resolve("mock") != nil)
	is.True(videobackend.Resolve("") != nil)
}

func TestMockBackendReadsTestCard(t *testing.T) {
	is := is.New(t)
	reset := videobackend.OverloadTimeNow(func() time.Time {
		return time.Date(2021, 3, 17, 13, 0, 0, 0, time.UTC)
	})
	defer reset()

	backend := videobackend.Mock()
	conn, err := backend.Connect(context.Background(), "MockCam")
	is.NoErr(err)
	is.NoErr(conn.Negotiate(videobackend.Settings{Width: 1280, Height: 720, FPS: 1000}))
	is.True(conn.IsOpen())
	is.True(len(conn.UUID()) > 0)

	frame := backend.NewFrame()
	defer frame.Close()
	is.NoErr(conn.Read(frame))

	is.Equal(frame.Format(), videoframe.RGBA8)
	is.Equal(frame.Dimensions(), videoframe.Dimensions{W: 640, H: 360})
	img, ok := frame.DataRef().(*image.RGBA)
	is.True(ok)
	is.Equal(img.RGBAAt(0, 0).A, uint8(255))

	is.NoErr(conn.Close())
	is.True(!conn.IsOpen())
	is.True(conn.Read(backend.NewFrame()) != nil)
}

func TestMockBackendRejectsOpenCVFrames(t *testing.T) {
	conn, err := videobackend.Mock().Connect(context.Background(), "MockCam")
	require.NoError(t, err)

	frame := videobackend.FrameFromMat(gocv.NewMat())
	defer frame.Close()
	assert.EqualError(t, conn.Read(frame), "must pass image frame to MockVideo connection read")
}

func TestResizeImageFrame(t *testing.T) {
	is := is.New(t)
	backend := videobackend.Mock()

	frame := backend.NewFrame()
	resized, err := backend.Resize(frame, videoframe.Dimensions{W: 320, H: 180})
	is.NoErr(err)
	is.Equal(resized.Dimensions(), videoframe.Dimensions{W: 320, H: 180})
	is.Equal(resized.Format(), videoframe.RGBA8)
}

func TestResizeOpenCVFrame(t *testing.T) {
	is := is.New(t)
	backend := videobackend.OpenCV()

	frame := videobackend.FrameFromMat(gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3))
	defer frame.Close()

	resized, err := backend.Resize(frame, videoframe.Dimensions{W: 640, H: 360})
	is.NoErr(err)
	defer resized.Close()
	is.Equal(resized.Dimensions(), videoframe.Dimensions{W: 640, H: 360})
	is.Equal(resized.Format(), videoframe.BGR8)
}

func TestOpenCVProbeSkipsUnopenableDevices(t *testing.T) {
	is := is.New(t)
	var probed []interface{}
	reset := videobackend.OverloadOpenVideoCapture(func(device interface{}) (*gocv.VideoCapture, error) {
		probed = append(probed, device)
		return nil, errors.New("no such device")
	})
	defer reset()

	is.Equal(len(videobackend.OpenCV().Probe(3)), 0)
	is.Equal(probed, []interface{}{0, 1, 2})
}

func TestMockProbeListsSingleDevice(t *testing.T) {
	is := is.New(t)
	is.Equal(videobackend.Mock().Probe(10), []int{0})
	is.Equal(len(videobackend.Mock().Probe(0)), 0)
}

func TestEnsureDirectoryPathExistsCreatesParents(t *testing.T) {
	is := is.New(t)
	memfs := afero.NewMemMapFs()
	reset := videobackend.OverloadFS(memfs)
	defer reset()

	is.NoErr(videobackend.EnsureDirectoryPathExists("/testroot/output/today"))
	info, err := memfs.Stat("/testroot/output/today")
	is.NoErr(err)
	is.True(info.IsDir())
	is.NoErr(videobackend.EnsureDirectoryPathExists("."))

	_, err = memfs.Stat("/testroot/output/today/missing")
	is.True(os.IsNotExist(err))
}
