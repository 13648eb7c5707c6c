// Package bus dispatches queries to their registered handlers by query type.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Query represents a read-only request.
type Query interface{}

// QueryHandler handles a specific query type.
type QueryHandler interface {
	Handle(ctx context.Context, q Query) (interface{}, error)
}

// QueryHandlerFunc adapts a function to the QueryHandler interface.
type QueryHandlerFunc func(ctx context.Context, q Query) (interface{}, error)

// Handle implements QueryHandler.
func (f QueryHandlerFunc) Handle(ctx context.Context, q Query) (interface{}, error) {
	return f(ctx, q)
}

// Middleware wraps a query handler.
type Middleware func(next QueryHandler) QueryHandler

// QueryBus dispatches queries to their handlers.
type QueryBus struct {
	handlers   map[reflect.Type]QueryHandler
	middleware []Middleware
	mu         sync.RWMutex
}

// NewQueryBus creates a query bus with the given middleware.
func NewQueryBus(middleware ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:   make(map[reflect.Type]QueryHandler),
		middleware: middleware,
	}
}

// Register registers a handler for a query type.
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}
	for i := len(b.middleware) - 1; i >= 0; i-- {
		handler = b.middleware[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Execute dispatches a query to its handler.
func (b *QueryBus) Execute(ctx context.Context, q Query) (interface{}, error) {
	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(q)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no handler registered for query type %T", q)
	}
	return handler.Handle(ctx, q)
}

// MetricsMiddleware counts query executions by type and outcome.
func MetricsMiddleware(counter *prometheus.CounterVec) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			result, err := next.Handle(ctx, q)
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			counter.WithLabelValues(reflect.TypeOf(q).Name(), outcome).Inc()
			return result, err
		})
	}
}

// LoggingMiddleware logs query execution failures.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			result, err := next.Handle(ctx, q)
			if err != nil {
				logger.Debug("query failed",
					zap.String("type", reflect.TypeOf(q).Name()),
					zap.Error(err),
				)
			}
			return result, err
		})
	}
}
