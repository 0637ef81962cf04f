package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
)

type mockHub struct {
	mock.Mock

	mu    sync.Mutex
	known []model.Instance
}

// AddInstance records instances without going through the mock so tests
// need no expectation for it.
func (m *mockHub) AddInstance(inst model.Instance) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.known {
		if k.Address() == inst.Address() {
			return false
		}
	}
	m.known = append(m.known, inst)
	return true
}

func (m *mockHub) Known() []model.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Instance(nil), m.known...)
}

func (m *mockHub) GetAllServices(ctx context.Context) ([]*model.Service, error) {
	args := m.Called(ctx)
	services, _ := args.Get(0).([]*model.Service)
	return services, args.Error(1)
}

func (m *mockHub) RefreshCharacteristics(ctx context.Context, svc *model.Service) (*model.Service, error) {
	args := m.Called(ctx, svc)
	refreshed, _ := args.Get(0).(*model.Service)
	return refreshed, args.Error(1)
}

func (m *mockHub) Discover(ctx context.Context, onInstance func(model.Instance)) error {
	args := m.Called(ctx, onInstance)
	return args.Error(0)
}

func (m *mockHub) Monitor(ctx context.Context, services []*model.Service, onEvents func([]model.CharacteristicEvent)) error {
	args := m.Called(ctx, services, onEvents)
	return args.Error(0)
}

// newIdleHub answers discovery and monitoring without doing anything and
// serves services from GetAllServices.
func newIdleHub(services ...*model.Service) *mockHub {
	hub := &mockHub{}
	hub.On("Discover", mock.Anything, mock.Anything).Return(nil)
	hub.On("Monitor", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	hub.On("GetAllServices", mock.Anything).Return(services, nil)
	return hub
}

type mockTransport struct {
	mock.Mock
	sent chan interface{}
}

func (m *mockTransport) SendJSON(ctx context.Context, payload interface{}) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// newRecordingTransport accepts every message and forwards it to sent.
func newRecordingTransport() *mockTransport {
	tr := &mockTransport{sent: make(chan interface{}, 64)}
	tr.On("SendJSON", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { tr.sent <- args.Get(1) }).
		Return(nil)
	return tr
}

func (m *mockTransport) next(t *testing.T, within time.Duration) interface{} {
	t.Helper()
	select {
	case msg := <-m.sent:
		return msg
	case <-time.After(within):
		t.Fatalf("no message sent within %s", within)
		return nil
	}
}

func (m *mockTransport) none(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case msg := <-m.sent:
		t.Fatalf("unexpected message %#v", msg)
	case <-time.After(within):
	}
}

type recordedWrite struct {
	Type  string
	Value interface{}
}

// recordingIO records writes. A non-nil err fails every write and a
// panicValue makes every write panic.
type recordingIO struct {
	mu         sync.Mutex
	writes     []recordedWrite
	err        error
	panicValue interface{}
}

func (r *recordingIO) SetValue(_ context.Context, c *model.Characteristic, value interface{}) error {
	if r.panicValue != nil {
		panic(r.panicValue)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, recordedWrite{Type: c.Type, Value: value})
	return nil
}

func (r *recordingIO) GetValue(_ context.Context, c *model.Characteristic) (interface{}, error) {
	return c.Value, r.err
}

func (r *recordingIO) Writes() []recordedWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedWrite(nil), r.writes...)
}

const (
	testHost = "10.0.0.5"
	testPort = 51826
	testUser = "0E:3A:11:22:33:44"
)

type charValue struct {
	name  string
	value interface{}
}

func cv(name string, value interface{}) charValue {
	return charValue{name: name, value: value}
}

// newService builds a service on the test instance. Characteristic iids are
// assigned in argument order starting at iid+1.
func newService(aid, iid int, serviceType, name string, io model.CharacteristicIO, chars ...charValue) *model.Service {
	svc := &model.Service{
		Aid:                  aid,
		Iid:                  iid,
		Type:                 serviceType,
		ServiceName:          name,
		AccessoryInformation: map[string]string{model.InfoName: name, model.InfoManufacturer: "Acme"},
		Instance:             model.Instance{IPAddress: testHost, Port: testPort, Username: testUser},
	}
	svc.UniqueID = model.ComputeUniqueID(testUser, aid, iid, serviceType)
	for i, c := range chars {
		ch := &model.Characteristic{Aid: aid, Iid: iid + 1 + i, Type: c.name, Value: c.value, CanRead: true, CanWrite: true, Ev: true}
		if io != nil {
			ch.Bind(io)
		}
		svc.Characteristics = append(svc.Characteristics, ch)
	}
	return svc
}

func newLight(aid int, name string, io model.CharacteristicIO) *model.Service {
	return newService(aid, 8, hap.ServiceLightbulb, name, io, cv(hap.On, false), cv(hap.Brightness, 0))
}

func fastTimings() Timings {
	return Timings{
		InitialDelay:     time.Millisecond,
		DiscoveryQuiet:   5 * time.Millisecond,
		RequestSyncDelay: time.Hour,
		ReportDebounce:   30 * time.Millisecond,
	}
}

// startReady starts a bridge and waits until its accessory list is loaded.
func startReady(t *testing.T, hub *mockHub, transport *mockTransport, cfg *model.PluginConfig, opts ...Option) *BridgeService {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithTimings(fastTimings())}, opts...)
	s := NewBridgeService(hub, transport, cfg, opts...)
	s.Start(context.Background())
	t.Cleanup(func() { _ = s.Close() })
	require.Eventually(t, s.Ready, time.Second, time.Millisecond)
	return s
}
