package process

import (
	"context"
	"sync"

	"github.com/tauraamui/camdoubler/pkg/log"
)

// Process is a long running unit of work owned by the server, such as
// capturing from the camera or streaming to the sink.
type Process interface {
	Setup() Process
	Start()
	Stop()
	Wait()
	Running() bool
}

type Settings struct {
	Name               string
	WaitForShutdownMsg string
	Process            func(context.Context) []chan interface{}
}

func New(settings Settings) Process {
	return &process{
		name:               settings.Name,
		waitForShutdownMsg: settings.WaitForShutdownMsg,
		run:                settings.Process,
	}
}

type process struct {
	mu                 sync.Mutex
	name               string
	waitForShutdownMsg string
	run                func(context.Context) []chan interface{}
	cancel             context.CancelFunc
	done               []chan interface{}
	running            bool
}

func (p *process) Setup() Process { return p }

// Start launches the process once, later calls are ignored.
func (p *process) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.run == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = p.run(ctx)
	p.running = true
	if len(p.name) > 0 {
		log.Debug("Started process [%s]", p.name)
	}
}

func (p *process) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	if len(p.waitForShutdownMsg) > 0 {
		log.Info(p.waitForShutdownMsg)
	}
	p.cancel()
	p.running = false
}

// Wait blocks until every channel returned by the process function is
// closed. It returns immediately for a process which never started.
func (p *process) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	for _, sig := range done {
		<-sig
	}
}

func (p *process) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
