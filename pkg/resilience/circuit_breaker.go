// Package resilience содержит механизмы отказоустойчивости для исходящих вызовов.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"notespace/pkg/logger"
)

// State - состояние предохранителя.
type State int

const (
	// StateClosed - вызовы проходят.
	StateClosed State = iota
	// StateOpen - вызовы отклоняются до истечения таймаута.
	StateOpen
	// StateHalfOpen - пропускаются пробные вызовы.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	LogBreakerStateChange = "circuit breaker state changed"
	LogBreakerTrip        = "circuit breaker tripped"
	LogBreakerReject      = "circuit breaker rejected call"
)

// ErrCircuitOpen возвращается, пока предохранитель разомкнут.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig - настройки предохранителя.
type BreakerConfig struct {
	// FailureThreshold - число подряд идущих ошибок до размыкания.
	FailureThreshold int
	// OpenTimeout - время в разомкнутом состоянии перед пробным вызовом.
	OpenTimeout time.Duration
	// SuccessThreshold - число успешных пробных вызовов до замыкания.
	SuccessThreshold int
}

// DefaultBreakerConfig возвращает настройки по умолчанию.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		SuccessThreshold: 1,
	}
}

// Breaker реализует паттерн circuit breaker.
type Breaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker создает предохранитель в замкнутом состоянии.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	return &Breaker{
		name:   name,
		config: config,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Execute вызывает fn, если предохранитель это позволяет, и учитывает результат.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if !b.allow(ctx) {
		return ErrCircuitOpen
	}

	err := fn()
	b.record(ctx, err)
	return err
}

// State возвращает текущее состояние.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.OpenTimeout {
			logger.Log(ctx).Debug(ctx, LogBreakerReject, zap.String("breaker", b.name))
			return false
		}
		b.transition(ctx, StateHalfOpen)
		return true
	default:
		return true
	}
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.successes = 0
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			logger.Log(ctx).Warn(ctx, LogBreakerTrip,
				zap.String("breaker", b.name),
				zap.Int("failures", b.failures),
				zap.Error(err))
			b.openedAt = b.now()
			b.transition(ctx, StateOpen)
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.successes = 0
			b.transition(ctx, StateClosed)
		}
	}
}

// transition вызывается под мьютексом.
func (b *Breaker) transition(ctx context.Context, to State) {
	if b.state == to {
		return
	}
	logger.Log(ctx).Info(ctx, LogBreakerStateChange,
		zap.String("breaker", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to))
	b.state = to
}
