package indexing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// attemptTimeout ограничивает одну попытку, а не всю серию
const attemptTimeout = 30 * time.Second

// permanentError - повтор не поможет (ошибка маппинга, 4xx)
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неповторяемую
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryLogic - повтор операций с индексом с экспоненциальной задержкой и джиттером ±25%
type RetryLogic struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	logger    logger.Logger
}

func NewRetryLogic(logger logger.Logger) *RetryLogic {
	return &RetryLogic{
		attempts:  3,
		baseDelay: time.Second,
		maxDelay:  time.Minute,
		logger:    logger,
	}
}

// WithMaxRetries - общее число попыток, не меньше одной
func (r *RetryLogic) WithMaxRetries(attempts int) *RetryLogic {
	r.attempts = max(attempts, 1)
	return r
}

func (r *RetryLogic) WithBaseDelay(delay time.Duration) *RetryLogic {
	r.baseDelay = delay
	return r
}

func (r *RetryLogic) WithMaxDelay(delay time.Duration) *RetryLogic {
	r.maxDelay = delay
	return r
}

// ExecuteWithRetry выполняет operation, пока она не пройдет, не вернет Permanent
// или не кончатся попытки. Отмена ctx прерывает ожидание между попытками.
func (r *RetryLogic) ExecuteWithRetry(ctx context.Context, operation func(context.Context) error) error {
	var err error

	for attempt := 1; ; attempt++ {
		err = r.attempt(ctx, operation)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("Index operation recovered", "attempt", attempt)
			}
			return nil
		}

		if isPermanent(err) {
			return err
		}
		if attempt >= r.attempts {
			break
		}

		delay := r.backoff(attempt)
		r.logger.Warn("Index operation failed, retrying",
			"attempt", attempt,
			"attempts", r.attempts,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("index operation failed after %d attempts: %w", r.attempts, err)
}

func (r *RetryLogic) attempt(ctx context.Context, operation func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()
	return operation(ctx)
}

// backoff: baseDelay * 2^(attempt-1) с джиттером, не больше maxDelay
func (r *RetryLogic) backoff(attempt int) time.Duration {
	delay := r.baseDelay << (attempt - 1)
	if delay <= 0 || delay > r.maxDelay {
		delay = r.maxDelay
	}

	jitter := time.Duration((rand.Float64()*0.5 - 0.25) * float64(delay))
	return min(delay+jitter, r.maxDelay)
}
