package resilience

import (
	"context"

	"go.uber.org/zap"

	"notespace/pkg/logger"
)

// Policy объединяет повторы и предохранитель для одного внешнего сервиса.
// Повторы выполняются внутри предохранителя: серия неудачных попыток считается одной ошибкой.
type Policy struct {
	name    string
	breaker *Breaker
	retry   *Retry
}

// NewPolicy создает политику с заданными настройками.
func NewPolicy(name string, retry RetryConfig, breaker BreakerConfig) *Policy {
	return &Policy{
		name:    name,
		breaker: NewBreaker(name, breaker),
		retry:   NewRetry(name, retry),
	}
}

// NewDefaultPolicy создает политику с настройками по умолчанию.
func NewDefaultPolicy(name string) *Policy {
	return NewPolicy(name, DefaultRetryConfig(), DefaultBreakerConfig())
}

// Breaker возвращает предохранитель политики.
func (p *Policy) Breaker() *Breaker {
	return p.breaker
}

// Run выполняет операцию под защитой политики.
func (p *Policy) Run(ctx context.Context, operation string, fn func() error) error {
	logger.Log(ctx).Debug(ctx, "executing operation with resilience",
		zap.String("service", p.name),
		zap.String("operation", operation))

	return p.breaker.Execute(ctx, func() error {
		return p.retry.Execute(ctx, fn)
	})
}

// Execute выполняет операцию с результатом под защитой политики.
func Execute[T any](ctx context.Context, p *Policy, operation string, fn func() (T, error)) (T, error) {
	var result T
	err := p.Run(ctx, operation, func() error {
		var err error
		result, err = fn()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
