package doubler

import (
	"fmt"
	"sync"

	"github.com/tauraamui/camdoubler/pkg/configdef"
	"github.com/tauraamui/camdoubler/pkg/doubler/process"
	"github.com/tauraamui/camdoubler/pkg/interpolate"
	"github.com/tauraamui/camdoubler/pkg/pacing"
	"github.com/tauraamui/camdoubler/pkg/video/videosink"
)

func schedulerSettings(config configdef.Scheduler) pacing.Settings {
	policy := pacing.DropHeadOnly
	if config.StaleMidPolicy == configdef.StaleMidPolicyLeading {
		policy = pacing.DropLeading
	}
	return pacing.Settings{
		History:        config.History,
		DueSlack:       config.DueSlack(),
		StaleHorizon:   config.StaleHorizon(),
		StaleMidPolicy: policy,
	}
}

func (s *Server) SetupProcesses() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.camera == nil {
		return ErrNotConnected
	}

	interp, err := interpolate.Resolve(s.config.Mid)
	if err != nil {
		return err
	}

	s.pacer = NewPacer(PacerSettings{
		Scheduler:         schedulerSettings(s.config.Scheduler),
		Interpolate:       interp,
		PresentationDelay: s.config.Scheduler.PresentationDelay(),
	})
	s.sink = videosink.New(s.backend, videosink.Options{
		Address:      s.config.Output.Address,
		Codec:        s.config.Output.Codec,
		FPS:          videosink.AdvertisedFPS(s.config.PreferFPS),
		Preview:      s.config.Preview,
		PreviewTitle: previewTitle,
	})

	capture := process.New(process.Settings{
		Name:               "capture",
		WaitForShutdownMsg: fmt.Sprintf("Closing camera [%s] video stream...", s.camera.Title()),
		Process:            process.CaptureFrames(s.camera, s.pacer),
	}).Setup()
	output := process.New(process.Settings{
		Name:               "output",
		WaitForShutdownMsg: "Stopping doubled video output...",
		Process:            process.StreamToSink(s.pacer, s.sink, s.stopWith),
	}).Setup()

	s.processes = []process.Process{capture, output}
	return nil
}

func (s *Server) RunProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = timeNow()
	for _, proc := range s.processes {
		proc.Start()
	}
}

func (s *Server) shutdownProcesses() {
	s.mu.Lock()
	processes := s.processes
	s.mu.Unlock()

	wg := sync.WaitGroup{}
	wg.Add(len(processes))
	for _, proc := range processes {
		go func(wg *sync.WaitGroup, proc process.Process) {
			proc.Stop()
			proc.Wait()
			wg.Done()
		}(&wg, proc)
	}
	wg.Wait()
}
