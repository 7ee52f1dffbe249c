package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/tacusci/logging/v2"
	"github.com/takama/daemon"
	"github.com/tauraamui/camdoubler/pkg/camera"
	"github.com/tauraamui/camdoubler/pkg/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
	db "github.com/tauraamui/camdoubler/pkg/database"
	"github.com/tauraamui/camdoubler/pkg/doubler"
	"github.com/tauraamui/camdoubler/pkg/log"
	"github.com/tauraamui/camdoubler/pkg/video/videobackend"
	"gocv.io/x/gocv"
)

const (
	name        = "camdoubler"
	description = "Camera service daemon which doubles the frame rate of a capture device"

	recentSessionsLimit = 10
)

type Service struct {
	daemon.Daemon
}

// Setup will create the default config and the session statistics DB
func (service *Service) Setup() (string, error) {
	log.Info("Setting up camdoubler service...")

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	err = db.Setup()
	if err != nil {
		if !errors.Is(err, db.ErrDBAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	return "Setup successful...", nil
}

func (service *Service) RemoveSetup() (string, error) {
	log.Info("Removing setup for camdoubler service...")
	if err := config.DefaultDestroyer().Destroy(); err != nil {
		log.Error("unable to delete config file: %s", err.Error())
	}

	if err := db.Destroy(); err != nil {
		log.Error("unable to delete database file: %s", err.Error())
	}

	return "Removing setup successful...", nil
}

func (service *Service) Devices() (string, error) {
	backend := videobackend.Default()
	if values, err := config.DefaultResolver().Resolve(); err == nil {
		backend = videobackend.Resolve(values.Backend)
	}

	devices, err := camera.Devices(backend)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Available capture devices:")
	for _, d := range devices {
		sb.WriteString(fmt.Sprintf("\n  %d", d))
	}
	return sb.String(), nil
}

func (service *Service) Sessions() (string, error) {
	sessions, closeDB, err := db.Sessions()
	if err != nil {
		return "", err
	}
	defer closeDB() //nolint

	recent, err := sessions.Recent(recentSessionsLimit)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "No recorded sessions", nil
	}

	var sb strings.Builder
	sb.WriteString("Recent sessions:")
	for _, s := range recent {
		sb.WriteString(fmt.Sprintf(
			"\n  %s [%s] %s for %s: in %d, out %d (real %d, mid %d, repeat %d), mids dropped %d",
			s.StartedAt.Format("2006/01/02 15:04:05"), s.Device, s.MidMode, s.Duration().Round(time.Second),
			s.FramesIn, s.FramesOut(), s.RealOut, s.MidOut, s.Repeats, s.MidsDropped,
		))
	}
	return sb.String(), nil
}

func (service *Service) Manage() (string, error) {
	usage := "Usage: camdoubler setup | remove-setup | install | remove | start | stop | status | devices | sessions | run [flags]"

	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command := args[0]
		switch command {
		case "setup":
			return service.Setup()
		case "remove-setup":
			return service.RemoveSetup()
		case "install":
			return service.Install()
		case "remove":
			return service.Remove()
		case "start":
			return service.Start()
		case "stop":
			return service.Stop()
		case "status":
			return service.Status()
		case "devices":
			return service.Devices()
		case "sessions":
			return service.Sessions()
		case "run":
			args = args[1:]
		default:
			return usage, nil
		}
	}

	return run(args)
}

func run(args []string) (string, error) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	log.Info("Starting camdoubler...")

	server, err := doubler.NewServer(config.OverridingResolver(config.DefaultResolver(), args), nil)
	if err != nil {
		return "", err
	}

	ctx, cancelStartup := context.WithCancel(context.Background())
	defer cancelStartup()
	startupErr := make(chan error, 1)
	go func() { startupErr <- startupServer(ctx, server) }()

	var runErr error
	select {
	case killSignal := <-interrupt:
		fmt.Print("\r")
		log.Error("Received signal: %s", killSignal)
	case <-server.Done():
		runErr = server.Err()
	case err := <-startupErr:
		if err != nil {
			runErr = err
			break
		}
		select {
		case killSignal := <-interrupt:
			fmt.Print("\r")
			log.Error("Received signal: %s", killSignal)
		case <-server.Done():
			runErr = server.Err()
		}
	}

	cancelStartup()
	log.Info("Shutting down server...")
	<-server.Shutdown()

	if logging.CurrentLoggingLevel == logging.DebugLevel {
		var b bytes.Buffer
		gocv.MatProfile.WriteTo(&b, 1) //nolint
		log.Debug("Remaining OpenCV mats: %d\n%s", gocv.MatProfile.Count(), b.String())
	}

	if runErr != nil {
		return "", runErr
	}
	return "Shutdown successful... BYE! 👋", nil
}

func startupServer(ctx context.Context, server *doubler.Server) error {
	if err := server.ConnectWithCancel(ctx); err != nil {
		return err
	}
	if err := server.SetupProcesses(); err != nil {
		return err
	}
	server.RunProcesses()
	return nil
}

func init() {
	log.Configure(os.Getenv("CAMDOUBLER_LOGGING_LEVEL"))
}

func main() {
	daemonType := daemon.SystemDaemon
	if runtime.GOOS == "darwin" {
		daemonType = daemon.UserAgent
	}

	srv, err := daemon.New(name, description, daemonType)
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	service := &Service{srv}
	status, err := service.Manage()
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	fmt.Println(status)
}
