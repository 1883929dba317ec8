package util

import (
	"pvnode/util/log"

	"fmt"
	"sync/atomic"
)

// Service defines a startable/stoppable component.
// The usual way to implement it is to embed BaseService and
// override OnStart and OnStop.
type Service interface {
	Start() error
	OnStart() error

	Stop() bool
	OnStop()

	Reset() error
	OnReset() error

	IsRunning() bool

	C4Quit() <-chan struct{}
	WaitForStop()

	String() string

	SetLogger(log.Logger)
}

// BaseService provides the common Service machinery: idempotent
// Start/Stop with atomic flags, a quit channel, and a Logger.
type BaseService struct {
	Logger log.Logger

	name    string
	started uint32 // atomic
	stopped uint32 // atomic
	c4quit  chan struct{}

	// The concrete service
	impl Service
}

func (bs *BaseService) Init(logger log.Logger, name string, impl Service) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	bs.Logger = logger
	bs.name = name
	bs.impl = impl
	bs.c4quit = make(chan struct{})
}

func (bs *BaseService) SetLogger(l log.Logger) {
	bs.Logger = l
}

// Start calls the impl's OnStart. An error is returned if the service is
// already started or stopped, or if OnStart fails.
func (bs *BaseService) Start() error {
	if atomic.CompareAndSwapUint32(&bs.started, 0, 1) {
		if atomic.LoadUint32(&bs.stopped) == 1 {
			atomic.StoreUint32(&bs.started, 0)
			return fmt.Errorf("Can't start %v, it's already stopped", bs.name)
		}

		bs.Logger.Info("Starting service", "service", bs.name)
		err := bs.impl.OnStart()
		if err != nil {
			atomic.StoreUint32(&bs.started, 0)
			return err
		}
		return nil
	}
	bs.Logger.Debug("Not starting service, it's already started", "service", bs.name)
	return fmt.Errorf("Already started %v", bs.name)
}

// OnStart does nothing. The impl may override it.
func (bs *BaseService) OnStart() error {
	return nil
}

// Stop calls the impl's OnStop and closes the quit channel.
// It returns false if the service was already stopped.
func (bs *BaseService) Stop() bool {
	if atomic.CompareAndSwapUint32(&bs.stopped, 0, 1) {
		bs.Logger.Info("Stopping service", "service", bs.name)
		bs.impl.OnStop()
		close(bs.c4quit)
		return true
	}
	bs.Logger.Debug("Stopping service (ignoring: already stopped)", "service", bs.name)
	return false
}

// OnStop does nothing. The impl may override it.
func (bs *BaseService) OnStop() {
}

// Reset transitions a stopped service back to its startable state.
// It fails if the service is still running.
func (bs *BaseService) Reset() error {
	if !atomic.CompareAndSwapUint32(&bs.stopped, 1, 0) {
		bs.Logger.Debug("Can't reset service, it's not stopped", "service", bs.name)
		return fmt.Errorf("Can't reset running %v", bs.name)
	}

	atomic.StoreUint32(&bs.started, 0)
	bs.c4quit = make(chan struct{})
	return bs.impl.OnReset()
}

func (bs *BaseService) OnReset() error {
	return fmt.Errorf("Service %v can't be reset", bs.name)
}

func (bs *BaseService) IsRunning() bool {
	return atomic.LoadUint32(&bs.started) == 1 && atomic.LoadUint32(&bs.stopped) == 0
}

// C4Quit returns the channel that is closed when the service stops.
func (bs *BaseService) C4Quit() <-chan struct{} {
	return bs.c4quit
}

// WaitForStop blocks until the service is stopped.
func (bs *BaseService) WaitForStop() {
	<-bs.c4quit
}

func (bs *BaseService) String() string {
	return bs.name
}
