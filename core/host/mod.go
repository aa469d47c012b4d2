// Package host implements an in-process runtime for native contracts.
//
// The host executes the calls one at a time on a single worker. Each call runs
// on a staged snapshot of the store: the writes of the call and the calls it
// schedules are committed only if the call succeeds. A follow-up is parked
// until the call it depends on is resolved, and it is then executed with the
// outcome of that call attached. A call that returns a promise is resolved
// with the outcome of the call the promise refers to.
package host

import (
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/core"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/store"
	"go.dedis.ch/xcall/core/store/prefixed"
	"golang.org/x/xerrors"
)

const (
	// DefaultCallCost is the amount of gas charged to every call before its
	// execution.
	DefaultCallCost execution.Gas = 10

	// DefaultScheduleCost is the amount of gas charged on top of the budget of
	// a scheduled call.
	DefaultScheduleCost execution.Gas = 5

	// DefaultQueryGas is the budget of a read-only call that does not specify
	// one.
	DefaultQueryGas execution.Gas = 1000
)

var (
	promReceipts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xcall_host_receipts_total",
		Help: "total number of executed calls",
	}, []string{"channel", "status"})

	promGas = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "xcall_host_gas_used",
		Help:    "gas used by the executed calls",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	promParked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "xcall_host_followups_parked",
		Help: "number of follow-ups waiting for an outcome",
	})
)

func init() {
	xcall.PromCollectors = append(xcall.PromCollectors, promReceipts, promGas, promParked)
}

// Event is the event notified to the observers of the host every time a call
// is resolved.
type Event struct {
	Call    execution.Call
	Outcome promise.Outcome
}

// receipt is a call waiting to be executed.
type receipt struct {
	call      execution.Call
	dependsOn promise.Ref
	outcomes  []promise.Outcome
}

type hostTemplate struct {
	callCost     execution.Gas
	scheduleCost execution.Gas
	tracer       opentracing.Tracer
	logger       zerolog.Logger
}

// Option is the type to set some fields when instantiating a host.
type Option func(*hostTemplate)

// WithCallCost is an option to set the amount of gas charged to every call.
func WithCallCost(gas execution.Gas) Option {
	return func(tmpl *hostTemplate) {
		tmpl.callCost = gas
	}
}

// WithScheduleCost is an option to set the amount of gas charged on top of the
// budget of every scheduled call.
func WithScheduleCost(gas execution.Gas) Option {
	return func(tmpl *hostTemplate) {
		tmpl.scheduleCost = gas
	}
}

// WithTracer is an option to set the tracer of the executions.
func WithTracer(tracer opentracing.Tracer) Option {
	return func(tmpl *hostTemplate) {
		tmpl.tracer = tracer
	}
}

// WithLogger is an option to set the logger of the host.
func WithLogger(logger zerolog.Logger) Option {
	return func(tmpl *hostTemplate) {
		tmpl.logger = logger
	}
}

// Host is the runtime of a set of contracts sharing a store.
type Host struct {
	sync.Mutex

	exec         execution.Service
	store        store.Store
	callCost     execution.Gas
	scheduleCost execution.Gas
	tracer       opentracing.Tracer
	logger       zerolog.Logger
	watcher      *core.Watcher

	queue   []*receipt
	parked  map[promise.Ref][]*receipt
	chained map[promise.Ref][]execution.Call
	futures map[promise.Ref]*Future

	wakeup  chan struct{}
	closing chan struct{}
	done    chan struct{}
	running bool
	closed  bool
}

// NewHost creates a new host that executes the calls with the service, on the
// given store.
func NewHost(exec execution.Service, st store.Store, opts ...Option) *Host {
	tmpl := hostTemplate{
		callCost:     DefaultCallCost,
		scheduleCost: DefaultScheduleCost,
		tracer:       opentracing.GlobalTracer(),
		logger:       xcall.Logger.With().Str("role", "host").Logger(),
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	return &Host{
		exec:         exec,
		store:        st,
		callCost:     tmpl.callCost,
		scheduleCost: tmpl.scheduleCost,
		tracer:       tmpl.tracer,
		logger:       tmpl.logger,
		watcher:      core.NewWatcher(),
		parked:       make(map[promise.Ref][]*receipt),
		chained:      make(map[promise.Ref][]execution.Call),
		futures:      make(map[promise.Ref]*Future),
		wakeup:       make(chan struct{}, 1),
	}
}

// Watch adds the observer to the list of observers notified of every resolved
// call. The observer is notified by the worker of the host and must not call
// the host back.
func (h *Host) Watch(observer core.Observer) {
	h.watcher.Add(observer)
}

// Unwatch removes the observer.
func (h *Host) Unwatch(observer core.Observer) {
	h.watcher.Remove(observer)
}

// Start starts the worker of the host. It does nothing if the worker is
// already running.
func (h *Host) Start() error {
	h.Lock()
	defer h.Unlock()

	if h.closed {
		return xerrors.New("host is closed")
	}

	if h.running {
		return nil
	}

	h.running = true
	h.closing = make(chan struct{})
	h.done = make(chan struct{})

	go h.run(h.closing, h.done)

	return nil
}

// Stop stops the worker and waits for it to return. A running worker executes
// every queued call, and the follow-ups they release, before it returns. The
// futures that are still not resolved fail. The host cannot be started again.
func (h *Host) Stop() error {
	h.Lock()

	if h.closed {
		h.Unlock()
		return xerrors.New("host is closed")
	}

	h.closed = true

	running := h.running
	if running {
		close(h.closing)
	}

	h.Unlock()

	if running {
		<-h.done
	}

	h.Lock()
	defer h.Unlock()

	for ref, future := range h.futures {
		future.resolve(promise.NewFailed(xerrors.New("host stopped")))
		delete(h.futures, ref)
	}

	return nil
}

// Submit enqueues a call from an external signer. The call is always delivered
// on the external channel. It returns the future of the call.
func (h *Host) Submit(call execution.Call) (*Future, error) {
	if call.Receiver == "" {
		return nil, xerrors.New("missing receiver")
	}

	if call.Caller.Account == "" {
		return nil, xerrors.New("missing signer")
	}

	call.ID = promise.NewRef()
	call.Caller.Channel = access.External

	future := newFuture(call.ID)

	h.Lock()

	if h.closed {
		h.Unlock()
		return nil, xerrors.New("host is closed")
	}

	h.futures[call.ID] = future
	h.queue = append(h.queue, &receipt{call: call})

	h.Unlock()

	h.notify()

	h.logger.Debug().
		Stringer("call", call.ID).
		Stringer("receiver", call.Receiver).
		Str("method", call.Method).
		Msg("call submitted")

	return future, nil
}

// Query executes a read-only call synchronously on the committed state of the
// store. The contract cannot write nor schedule calls. The default query budget
// is used if the call does not provide one.
func (h *Host) Query(call execution.Call) ([]byte, error) {
	if call.Receiver == "" {
		return nil, xerrors.New("missing receiver")
	}

	call.ID = promise.NewRef()
	call.Caller.Channel = access.External

	if call.Gas == 0 {
		call.Gas = DefaultQueryGas
	}

	var ret execution.Return

	err := h.store.View(func(r store.Readable) error {
		e := newEnv(call, readOnly{Readable: prefixed.NewReadable(call.Receiver.String(), r)}, nil, 0)
		e.readOnly = true

		err := e.UseGas(h.callCost)
		if err != nil {
			return err
		}

		ret, err = h.exec.Execute(e)
		return err
	})
	if err != nil {
		return nil, xerrors.Errorf("%s.%s: %w", call.Receiver, call.Method, err)
	}

	_, isPromise := ret.GetPromise()
	if isPromise {
		return nil, xerrors.Errorf("%s.%s: query returned a promise", call.Receiver, call.Method)
	}

	return ret.GetValue(), nil
}

// Pending returns the number of calls that are either waiting to be executed,
// or parked until an outcome is resolved.
func (h *Host) Pending() int {
	h.Lock()
	defer h.Unlock()

	n := len(h.queue)
	for _, rr := range h.parked {
		n += len(rr)
	}

	return n
}

func (h *Host) notify() {
	select {
	case h.wakeup <- struct{}{}:
	default:
	}
}

func (h *Host) run(closing, done chan struct{}) {
	defer close(done)

	for {
		r := h.next()
		if r != nil {
			h.process(r)
			continue
		}

		select {
		case <-h.wakeup:
		case <-closing:
			// The queue is drained so that the follow-ups of the committed
			// calls are executed before the worker exits.
			for r = h.next(); r != nil; r = h.next() {
				h.process(r)
			}

			return
		}
	}
}

func (h *Host) next() *receipt {
	h.Lock()
	defer h.Unlock()

	if len(h.queue) == 0 {
		return nil
	}

	r := h.queue[0]
	h.queue[0] = nil
	h.queue = h.queue[1:]

	return r
}

// process executes the receipt on a staged snapshot and resolves it.
func (h *Host) process(r *receipt) {
	call := r.call

	span := h.tracer.StartSpan("xcall.execute")
	span.SetTag("call", call.ID.String())
	span.SetTag("receiver", call.Receiver.String())
	span.SetTag("method", call.Method)
	span.SetTag("channel", call.Caller.Channel.String())
	defer span.Finish()

	var e *env
	var ret execution.Return

	err := h.store.Update(func(snap store.Snapshot) error {
		e = newEnv(call, prefixed.NewSnapshot(call.Receiver.String(), snap), r.outcomes, h.scheduleCost)

		err := e.UseGas(h.callCost)
		if err != nil {
			return err
		}

		ret, err = h.exec.Execute(e)
		if err != nil {
			return err
		}

		ref, isPromise := ret.GetPromise()
		if isPromise && !e.owns(ref) {
			return xerrors.Errorf("promise %v was not scheduled by the call", ref)
		}

		return nil
	})

	if e != nil {
		promGas.Observe(float64(call.Gas - e.RemainingGas()))
	}

	logger := h.logger.With().
		Stringer("call", call.ID).
		Stringer("receiver", call.Receiver).
		Str("method", call.Method).
		Stringer("caller", call.Caller).
		Logger()

	h.Lock()
	defer h.Unlock()

	if err != nil {
		err = xerrors.Errorf("%s.%s: %w", call.Receiver, call.Method, err)

		span.SetTag("error", true)
		span.LogKV("error", err.Error())

		logger.Warn().Err(err).Msg("call failed")

		promReceipts.WithLabelValues(call.Caller.Channel.String(), promise.Failed.String()).Inc()

		h.resolve(call, promise.NewFailed(err))

		return
	}

	promReceipts.WithLabelValues(call.Caller.Channel.String(), promise.Successful.String()).Inc()

	for _, child := range e.scheduled {
		if child.dependsOn.IsNil() {
			h.queue = append(h.queue, child)
			continue
		}

		h.parked[child.dependsOn] = append(h.parked[child.dependsOn], child)
		promParked.Inc()
	}

	ref, isPromise := ret.GetPromise()
	if isPromise {
		logger.Debug().Stringer("promise", ref).Msg("call chained")

		h.chained[ref] = append(h.chained[ref], call)
	} else {
		logger.Debug().Msg("call executed")

		h.resolve(call, promise.NewSuccessful(ret.GetValue()))
	}
}

// resolve sets the outcome of the call, releases the follow-ups waiting for it
// and resolves the calls chained to it. The lock must be held.
func (h *Host) resolve(call execution.Call, outcome promise.Outcome) {
	// Observers are notified before the future so that a resolved future
	// implies a notified event.
	h.watcher.Notify(Event{Call: call, Outcome: outcome})

	future, found := h.futures[call.ID]
	if found {
		future.resolve(outcome)
		delete(h.futures, call.ID)
	}

	for _, followup := range h.parked[call.ID] {
		followup.outcomes = []promise.Outcome{outcome}
		h.queue = append(h.queue, followup)
		promParked.Dec()
	}

	delete(h.parked, call.ID)

	for _, chained := range h.chained[call.ID] {
		h.resolve(chained, outcome)
	}

	delete(h.chained, call.ID)
}

// readOnly is a snapshot that rejects the writes.
//
// - implements store.Snapshot
type readOnly struct {
	store.Readable
}

// Set implements store.Writable. It returns an error.
func (readOnly) Set([]byte, []byte) error {
	return xerrors.New("read-only call")
}

// Delete implements store.Writable. It returns an error.
func (readOnly) Delete([]byte) error {
	return xerrors.New("read-only call")
}
