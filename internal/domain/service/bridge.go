package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/translator"
	"hap-gsh-bridge/internal/metrics"
	"hap-gsh-bridge/internal/ports"
)

var ErrClosed = errors.New("bridge is closed")

// Timings are the delays driving discovery and reporting.
type Timings struct {
	// InitialDelay elapses between Start and the first discovery cycle.
	InitialDelay time.Duration
	// DiscoveryQuiet must pass without a new instance before loading.
	DiscoveryQuiet time.Duration
	// RequestSyncDelay runs from settling to the request-sync message.
	RequestSyncDelay time.Duration
	// ReportDebounce is the quiet period before pending reports are sent.
	ReportDebounce time.Duration
	// DiscoveryInterval separates discovery cycles once ready. Zero runs
	// discovery only at start.
	DiscoveryInterval time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		InitialDelay:      time.Second,
		DiscoveryQuiet:    5 * time.Second,
		RequestSyncDelay:  15 * time.Second,
		ReportDebounce:    time.Second,
		DiscoveryInterval: time.Minute,
	}
}

type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseDiscovering
	PhaseSettled
	PhaseReady
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDiscovering:
		return "discovering"
	case PhaseSettled:
		return "settled"
	case PhaseReady:
		return "ready"
	case PhaseDestroyed:
		return "destroyed"
	}
	return "unknown"
}

type Option func(*BridgeService)

func WithLogger(l *zap.Logger) Option {
	return func(s *BridgeService) {
		s.logger = l
	}
}

func WithTimings(t Timings) Option {
	return func(s *BridgeService) {
		s.timings = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BridgeService) {
		s.metrics = m
	}
}

// WithRequestIDs replaces the generator of report-state request ids.
func WithRequestIDs(f func() string) Option {
	return func(s *BridgeService) {
		s.newRequestID = f
	}
}

// BridgeService holds the accessory list and serves cloud intents against
// it. All state below the loop marker is owned by the loop goroutine; public
// methods reach it by posting closures on cmds.
type BridgeService struct {
	hub          ports.HubClient
	transport    ports.Transport
	cfg          *model.PluginConfig
	factory      *translator.Factory
	timings      Timings
	logger       *zap.Logger
	metrics      *metrics.Metrics
	newRequestID func() string

	cmds      chan func()
	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	ready     atomic.Bool
	phaseSeen atomic.Int32

	// loop
	ctx           context.Context
	phase         Phase
	services      []*model.Service
	pending       []string
	startTimer    loopTimer
	quietTimer    loopTimer
	syncTimer     loopTimer
	reportTimer   loopTimer
	cycleTimer    loopTimer
	loadSeq       int
	loading       bool
	reloadWanted  bool
	loadedFrom    map[string]bool
	monitorCancel context.CancelFunc
}

var _ ports.BridgePort = (*BridgeService)(nil)

func NewBridgeService(hub ports.HubClient, transport ports.Transport, cfg *model.PluginConfig, opts ...Option) *BridgeService {
	if cfg == nil {
		cfg = &model.PluginConfig{}
	}
	s := &BridgeService{
		hub:          hub,
		transport:    transport,
		cfg:          cfg,
		factory:      translator.NewFactory(cfg),
		timings:      DefaultTimings(),
		logger:       zap.L().Named("bridge"),
		newRequestID: uuid.NewString,
		cmds:         make(chan func()),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the owner loop. Discovery begins after InitialDelay. Calls
// after the first, or after Close, do nothing.
func (s *BridgeService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.ctx = ctx
		s.startTimer.arm(s.timings.InitialDelay)
		go s.loop(ctx)
	})
}

// Close stops every timer and the event monitor and waits for the loop to
// exit. It is safe to call more than once.
func (s *BridgeService) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	// A bridge that never started has no loop to close done.
	s.startOnce.Do(func() {
		s.setPhase(PhaseDestroyed)
		close(s.done)
	})
	<-s.done
	return nil
}

// Done is closed once the bridge has been torn down.
func (s *BridgeService) Done() <-chan struct{} {
	return s.done
}

// Ready reports whether the accessory list has been loaded.
func (s *BridgeService) Ready() bool {
	return s.ready.Load()
}

func (s *BridgeService) Phase() Phase {
	return Phase(s.phaseSeen.Load())
}

func (s *BridgeService) setPhase(p Phase) {
	s.phase = p
	s.phaseSeen.Store(int32(p))
}

func (s *BridgeService) loop(ctx context.Context) {
	defer close(s.done)
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case fn := <-s.cmds:
			fn()
		case <-s.startTimer.C():
			s.startTimer.fired()
			s.startDiscovery()
		case <-s.quietTimer.C():
			s.quietTimer.fired()
			s.settle()
		case <-s.syncTimer.C():
			s.syncTimer.fired()
			go func() {
				if err := s.RequestSync(ctx); err != nil {
					s.logger.Error("request sync failed", zap.Error(err))
				}
			}()
		case <-s.reportTimer.C():
			s.reportTimer.fired()
			s.drainPendingReports()
		case <-s.cycleTimer.C():
			s.cycleTimer.fired()
			s.discover()
			s.cycleTimer.arm(s.timings.DiscoveryInterval)
		}
	}
}

func (s *BridgeService) teardown() {
	s.startTimer.stop()
	s.quietTimer.stop()
	s.syncTimer.stop()
	s.reportTimer.stop()
	s.cycleTimer.stop()
	if s.monitorCancel != nil {
		s.monitorCancel()
		s.monitorCancel = nil
	}
	s.pending = nil
	s.ready.Store(false)
	s.setPhase(PhaseDestroyed)
	s.logger.Debug("bridge torn down")
}

// do runs fn on the loop goroutine and waits for it to finish.
func (s *BridgeService) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn on the loop without waiting. It gives up if the bridge is
// closed first.
func (s *BridgeService) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.done:
	}
}

func (s *BridgeService) startDiscovery() {
	s.setPhase(PhaseDiscovering)
	s.quietTimer.arm(s.timings.DiscoveryQuiet)
	s.logger.Debug("starting instance discovery")
	s.discover()
}

// discover runs one discovery cycle off the loop. Reachable instances come
// back through InstanceDiscovered.
func (s *BridgeService) discover() {
	ctx := s.ctx
	go func() {
		err := s.hub.Discover(ctx, func(inst model.Instance) {
			if err := s.InstanceDiscovered(ctx, inst); err != nil && !errors.Is(err, ErrClosed) {
				s.logger.Debug("instance announcement dropped", zap.Error(err))
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("instance discovery failed", zap.Error(err))
		}
	}()
}

// InstanceDiscovered records an announced hub instance and hands it to the
// hub client. While discovering it restarts the quiet period. Once ready it
// reloads the accessory list when the instance is new or its services were
// not loaded last time.
func (s *BridgeService) InstanceDiscovered(ctx context.Context, inst model.Instance) error {
	added := s.hub.AddInstance(inst)
	return s.do(ctx, func() {
		s.logger.Debug("instance discovered",
			zap.String("username", inst.Username),
			zap.String("address", inst.Address()),
			zap.Bool("new", added),
			zap.Stringer("phase", s.phase))

		switch s.phase {
		case PhaseDiscovering:
			s.quietTimer.arm(s.timings.DiscoveryQuiet)
		case PhaseSettled:
			if added {
				s.reloadWanted = true
			}
		case PhaseReady:
			if added || !s.loadedFrom[inst.Address()] {
				s.load()
			}
		}
	})
}

func (s *BridgeService) settle() {
	s.logger.Debug("no more instances discovered, publishing services")
	s.setPhase(PhaseSettled)
	s.load()
	s.syncTimer.arm(s.timings.RequestSyncDelay)
}

// load fetches the accessory list off the loop and posts the result back.
func (s *BridgeService) load() {
	if s.loading {
		s.reloadWanted = true
		return
	}
	s.loading = true
	s.loadSeq++
	seq := s.loadSeq
	ctx := s.ctx

	go func() {
		services, err := s.hub.GetAllServices(ctx)
		if err != nil {
			if errors.Is(err, ports.ErrInsecureModeRequired) {
				s.logger.Warn("the hub must be running in insecure mode to view and control accessories from this bridge")
			} else if ctx.Err() == nil {
				s.logger.Error("failed to load accessories from the hub", zap.Error(err))
			}
			services = nil
		}
		from := make(map[string]bool)
		for _, svc := range services {
			from[svc.Instance.Address()] = true
		}
		services = s.filterServices(services)
		s.post(func() { s.loaded(seq, services, from) })
	}()
}

// loaded installs a finished load. from holds the addresses of instances
// that answered with services, before filtering.
func (s *BridgeService) loaded(seq int, services []*model.Service, from map[string]bool) {
	s.loading = false
	if seq != s.loadSeq || s.phase == PhaseDestroyed {
		return
	}
	s.services = services
	s.loadedFrom = from
	if s.phase != PhaseReady && s.timings.DiscoveryInterval > 0 {
		s.cycleTimer.arm(s.timings.DiscoveryInterval)
	}
	s.setPhase(PhaseReady)
	s.ready.Store(true)
	s.metrics.SetAccessories(len(services))
	s.logger.Info("accessories loaded", zap.Int("count", len(services)))

	devices := s.syncDevices(services)
	s.logger.Debug("sync response built", zap.Int("devices", len(devices)))

	s.startMonitor(services)

	if s.reloadWanted {
		s.reloadWanted = false
		s.load()
	}
}

func (s *BridgeService) startMonitor(services []*model.Service) {
	if s.monitorCancel != nil {
		s.monitorCancel()
		s.monitorCancel = nil
	}
	if len(services) == 0 {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.monitorCancel = cancel
	snapshot := append([]*model.Service(nil), services...)

	go func() {
		err := s.hub.Monitor(ctx, snapshot, func(events []model.CharacteristicEvent) {
			if err := s.HandleEvents(ctx, events); err != nil && !errors.Is(err, ErrClosed) && ctx.Err() == nil {
				s.logger.Warn("dropped characteristic events", zap.Error(err))
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("characteristic monitor stopped", zap.Error(err))
		}
	}()
}

// Services returns the held services. The slice is a copy; the services
// themselves are never modified in place.
func (s *BridgeService) Services(ctx context.Context) ([]*model.Service, error) {
	var out []*model.Service
	err := s.do(ctx, func() {
		out = append([]*model.Service(nil), s.services...)
	})
	return out, err
}

func (s *BridgeService) lookup(ctx context.Context, id string) (*model.Service, error) {
	var svc *model.Service
	err := s.do(ctx, func() {
		svc = s.find(id)
	})
	return svc, err
}

// find must run on the loop.
func (s *BridgeService) find(id string) *model.Service {
	for _, svc := range s.services {
		if svc.UniqueID == id {
			return svc
		}
	}
	return nil
}

// replace must run on the loop.
func (s *BridgeService) replace(svc *model.Service) {
	for i, held := range s.services {
		if held.UniqueID == svc.UniqueID {
			s.services[i] = svc
			return
		}
	}
}

// loopTimer is a timer owned by the loop goroutine. C is nil while the timer
// is unarmed, so selecting on it blocks.
type loopTimer struct {
	t *time.Timer
}

func (lt *loopTimer) arm(d time.Duration) {
	lt.stop()
	lt.t = time.NewTimer(d)
}

func (lt *loopTimer) stop() {
	if lt.t != nil {
		lt.t.Stop()
		lt.t = nil
	}
}

func (lt *loopTimer) fired() {
	lt.t = nil
}

func (lt *loopTimer) C() <-chan time.Time {
	if lt.t == nil {
		return nil
	}
	return lt.t.C
}
