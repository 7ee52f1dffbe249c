package camera

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
	"golang.org/x/term"
)

const MaxProbedDevices = 10

var ErrNoDevices = xerror.New("no capture devices found")

var plainPromptReader plainReader = stdinPlainReader{readFrom: os.Stdin}

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type plainReader interface {
	ReadPlain(promptText string) (string, error)
}

type stdinPlainReader struct {
	readFrom io.Reader
}

func (s stdinPlainReader) ReadPlain(promptText string) (string, error) {
	if len(promptText) > 0 {
		fmt.Printf("%s: ", promptText)
	}
	stdinReader := bufio.NewReader(s.readFrom)
	value, err := stdinReader.ReadString('\n')
	return strings.TrimSpace(value), err
}

// Devices lists the indexes of every capture device the backend can open.
func Devices(backend videobackend.Backend) ([]int, error) {
	devices := backend.Probe(MaxProbedDevices)
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return devices, nil
}

// SelectDevice returns the configured device address, or asks which of the
// probed devices to use. Without a terminal to ask on the first one is used.
func SelectDevice(backend videobackend.Backend, configured string) (string, error) {
	if len(configured) > 0 {
		return configured, nil
	}

	devices, err := Devices(backend)
	if err != nil {
		return "", err
	}

	first := strconv.Itoa(devices[0])
	if len(devices) == 1 || !isTerminal() {
		log.Info("Using capture device %s", first)
		return first, nil
	}

	if logging.CurrentLoggingLevel != logging.SilentLevel {
		fmt.Println("Available capture devices:")
		for _, d := range devices {
			fmt.Printf("  %d\n", d)
		}
	}

	value, err := plainPromptReader.ReadPlain(fmt.Sprintf("Select capture device [%s]", first))
	if err != nil && err != io.EOF {
		return "", xerror.Errorf("failed to prompt for capture device: %w", err)
	}
	if len(value) == 0 {
		return first, nil
	}

	chosen, err := strconv.Atoi(value)
	if err != nil {
		return "", xerror.Errorf("capture device must be a number: %w", err)
	}
	for _, d := range devices {
		if d == chosen {
			return value, nil
		}
	}
	return "", xerror.Errorf("capture device %d is not available", chosen)
}
