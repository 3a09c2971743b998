// Package progression drives an order through its delivery lifecycle on a
// wall-clock schedule: pending -> preparing -> collecting -> delivering ->
// delivered. Each stage dwells for a fixed time, then the engine hands the
// advanced snapshot to the subscriber and schedules the next stage.
package progression

import (
	"sync"
	"time"

	"github.com/hunter4ass/OWLD/internal/domain"
	"go.uber.org/zap"
)

type transition struct {
	next  domain.OrderStatus
	delay time.Duration
}

// Delays holds the dwell time of every non-terminal status.
type Delays struct {
	Pending    time.Duration
	Preparing  time.Duration
	Collecting time.Duration
	Delivering time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Pending:    5 * time.Second,
		Preparing:  10 * time.Second,
		Collecting: 15 * time.Second,
		Delivering: 20 * time.Second,
	}
}

// ChangeFunc receives the advanced order snapshot on every transition.
type ChangeFunc func(order domain.Order)

// Engine owns one pending timer per order id. It is owned by the
// application context and torn down explicitly, nothing survives StopAll.
type Engine struct {
	mu          sync.Mutex
	timers      map[string]*time.Timer
	transitions map[domain.OrderStatus]transition
	logger      *zap.Logger
}

func NewEngine(logger *zap.Logger, delays Delays) *Engine {
	return &Engine{
		timers: make(map[string]*time.Timer),
		transitions: map[domain.OrderStatus]transition{
			domain.OrderStatusPending:    {next: domain.OrderStatusPreparing, delay: delays.Pending},
			domain.OrderStatusPreparing:  {next: domain.OrderStatusCollecting, delay: delays.Preparing},
			domain.OrderStatusCollecting: {next: domain.OrderStatusDelivering, delay: delays.Collecting},
			domain.OrderStatusDelivering: {next: domain.OrderStatusDelivered, delay: delays.Delivering},
		},
		logger: logger,
	}
}

// Start schedules the transition out of the order's current status. A
// previously scheduled transition for the same id is cancelled first, so
// at most one timer per order exists no matter how many call sites start
// the same order. Orders already delivered are left alone.
func (e *Engine) Start(order domain.Order, onChange ChangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked(order.ID)

	tr, ok := e.transitions[order.Status]
	if !ok {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(tr.delay, func() {
		e.mu.Lock()
		// Stop or a newer Start may have raced the firing timer.
		if e.timers[order.ID] != timer {
			e.mu.Unlock()
			return
		}
		delete(e.timers, order.ID)
		e.mu.Unlock()

		updated := order
		updated.Status = tr.next

		onChange(updated)

		if !tr.next.Terminal() {
			e.Start(updated, onChange)
		}
	})

	e.timers[order.ID] = timer

	e.logger.Debug("progression scheduled",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(tr.next)),
		zap.Duration("delay", tr.delay),
	)
}

// Stop cancels the pending transition for the order, if any. Safe to call
// when nothing is scheduled.
func (e *Engine) Stop(orderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked(orderID)
}

// StopAll cancels every pending transition. Used on session teardown so no
// timer fires against cleared state.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, timer := range e.timers {
		timer.Stop()
		delete(e.timers, id)
	}
}

// Active reports whether a transition is currently scheduled for the order.
func (e *Engine) Active(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.timers[orderID]
	return ok
}

func (e *Engine) cancelLocked(orderID string) {
	if timer, ok := e.timers[orderID]; ok {
		timer.Stop()
		delete(e.timers, orderID)
	}
}
