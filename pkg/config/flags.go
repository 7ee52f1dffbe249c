package config

import (
	"flag"
	"io"

	"github.com/tauraamui/camdoubler/pkg/configdef"
	"github.com/tauraamui/xerror"
)

// ApplyFlags overrides values with the run flags given in args. Flags
// which are not given keep the value already present.
func ApplyFlags(values configdef.Values, args []string) (configdef.Values, error) {
	flags := flag.NewFlagSet("camdoubler", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	backend := flags.String("backend", values.Backend, "capture backend, opencv or mock")
	device := flags.String("device", values.Device, "capture device index or address")
	width := flags.Int("width", values.Width, "capture and output width")
	height := flags.Int("height", values.Height, "capture and output height")
	preferFPS := flags.Int("prefer_fps", values.PreferFPS, "frame rate requested from the device")
	mid := flags.String("mid", values.Mid, "mid frame mode, duplicate or blend")
	preview := flags.Bool("preview", values.Preview, "show the output in a preview window")
	output := flags.String("output", values.Output.Address, "output file or device address")

	if err := flags.Parse(args); err != nil {
		return configdef.Values{}, xerror.Errorf("unable to parse command line flags: %w", err)
	}

	values.Backend = *backend
	values.Device = *device
	values.Width = *width
	values.Height = *height
	values.PreferFPS = *preferFPS
	values.Mid = *mid
	values.Preview = *preview
	values.Output.Address = *output

	if err := values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}
	return values, nil
}
