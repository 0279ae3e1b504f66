// Package dispatch routes lifecycle events to hooks and applies each hook's
// failure policy.
//
// Gates run with PolicyPropagate: their errors reach the identity platform,
// which aborts the action and shows the reason to the user. Customizers and
// notifiers run with PolicySuppress: a failure is logged and the event is
// handed back exactly as it arrived, so the lifecycle always proceeds.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/metrics"
	"github.com/wiseuni/identity-hooks/internal/middleware"
)

// Hook processes one lifecycle event, mutating its response in place.
type Hook interface {
	Process(ctx context.Context, ev *event.Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, ev *event.Event) error

// Process calls f.
func (f HookFunc) Process(ctx context.Context, ev *event.Event) error {
	return f(ctx, ev)
}

// Policy decides what happens when a hook fails.
type Policy int

const (
	// PolicyPropagate returns the hook's error to the caller.
	PolicyPropagate Policy = iota
	// PolicySuppress logs the error and returns the event unmodified.
	PolicySuppress
)

func (p Policy) String() string {
	if p == PolicySuppress {
		return "suppress"
	}
	return "propagate"
}

// Route binds a hook to its routing name.
type Route struct {
	// Name is the trigger source prefix, e.g. event.HookPreSignUp.
	Name   string
	Hook   Hook
	Policy Policy
}

// Dispatcher routes events to registered hooks.
type Dispatcher struct {
	mu      sync.RWMutex
	routes  map[string]Route
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates an empty dispatcher.
func New(m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		routes:  make(map[string]Route),
		metrics: m,
		logger:  logger,
	}
}

// Register adds or replaces a route.
func (d *Dispatcher) Register(r Route) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[r.Name] = r
}

// Names returns the registered hook names in sorted order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Suppresses reports whether the named hook is registered with PolicySuppress.
func (d *Dispatcher) Suppresses(name string) bool {
	route, err := d.route(name)
	return err == nil && route.Policy == PolicySuppress
}

func (d *Dispatcher) route(name string) (Route, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.routes[name]
	if !ok {
		return Route{}, hookerr.MalformedEvent("no hook registered for %q", name)
	}
	return r, nil
}

// Invoke runs the named hook on ev. On success the mutated event is returned.
// On failure a propagating hook returns the error; a suppressing hook returns
// a copy of ev taken before the call.
func (d *Dispatcher) Invoke(ctx context.Context, name string, ev *event.Event) (*event.Event, error) {
	route, err := d.route(name)
	if err != nil {
		return nil, err
	}
	return d.invoke(ctx, route, ev)
}

// InvokeRaw decodes payload, runs the named hook and encodes the result.
// A suppressing hook given an undecodable payload returns it unchanged.
func (d *Dispatcher) InvokeRaw(ctx context.Context, name string, payload []byte) ([]byte, error) {
	route, err := d.route(name)
	if err != nil {
		return nil, err
	}

	ev, err := event.Decode(payload)
	if err != nil {
		if route.Policy == PolicySuppress {
			d.suppressed(ctx, route, err, time.Now())
			return payload, nil
		}
		d.rejected(ctx, route, err, time.Now())
		return nil, err
	}

	out, err := d.invoke(ctx, route, ev)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

// InvokeTrigger routes payload by its triggerSource prefix.
func (d *Dispatcher) InvokeTrigger(ctx context.Context, payload []byte) ([]byte, error) {
	var head struct {
		TriggerSource string `json:"triggerSource"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, &hookerr.Error{Kind: hookerr.KindMalformedEvent, Reason: "event has no readable triggerSource", Err: err}
	}
	if head.TriggerSource == "" {
		return nil, hookerr.MalformedEvent("event has no triggerSource")
	}
	return d.InvokeRaw(ctx, event.HookName(head.TriggerSource), payload)
}

func (d *Dispatcher) invoke(ctx context.Context, route Route, ev *event.Event) (*event.Event, error) {
	start := time.Now()
	snapshot := ev.Clone()

	err := d.call(ctx, route, ev)
	if err == nil {
		d.metrics.ObserveHook(route.Name, metrics.OutcomeAccepted, "none", start)
		d.logger.Debug("hook completed",
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.String("hook", route.Name),
			zap.String("trigger_source", ev.TriggerSource),
			zap.Duration("duration", time.Since(start)),
		)
		return ev, nil
	}

	if route.Policy == PolicySuppress {
		d.suppressed(ctx, route, err, start)
		return snapshot, nil
	}
	d.rejected(ctx, route, err, start)
	return nil, err
}

// call runs the hook, converting a panic into an error.
func (d *Dispatcher) call(ctx context.Context, route Route, ev *event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("hook panicked",
				zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
				zap.String("hook", route.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("hook %s panicked: %v", route.Name, r)
		}
	}()
	return route.Hook.Process(ctx, ev)
}

func (d *Dispatcher) suppressed(ctx context.Context, route Route, err error, start time.Time) {
	kind := hookerr.KindOf(err)
	d.metrics.ObserveHook(route.Name, metrics.OutcomeSuppressed, kind.String(), start)
	d.logger.Warn("hook failed, returning event unmodified",
		zap.Error(err),
		zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
		zap.String("hook", route.Name),
		zap.String("kind", kind.String()),
	)
}

func (d *Dispatcher) rejected(ctx context.Context, route Route, err error, start time.Time) {
	kind := hookerr.KindOf(err)
	d.metrics.ObserveHook(route.Name, metrics.OutcomeRejected, kind.String(), start)
	d.logger.Info("hook rejected event",
		zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
		zap.String("hook", route.Name),
		zap.String("kind", kind.String()),
		zap.String("reason", err.Error()),
	)
}
