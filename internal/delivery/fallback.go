package delivery

import (
	"context"

	"go.uber.org/zap"
)

// FallbackProvider asks the primary provider first and falls back to the
// static lists on any error or empty answer, marking the result degraded.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
	log      *zap.Logger
}

func NewFallbackProvider(primary, fallback Provider, log *zap.Logger) *FallbackProvider {
	if fallback == nil {
		fallback = NewStaticProvider()
	}
	return &FallbackProvider{primary: primary, fallback: fallback, log: log}
}

func (p *FallbackProvider) Cities(ctx context.Context) (Result, error) {
	if p.primary != nil {
		items, err := p.primary.Cities(ctx)
		if err == nil && len(items) > 0 {
			return Result{Items: items}, nil
		}
		p.degrade("cities", "", err)
	}
	items, err := p.fallback.Cities(ctx)
	return Result{Items: items, Degraded: true}, err
}

func (p *FallbackProvider) Departments(ctx context.Context, city string) (Result, error) {
	if p.primary != nil {
		items, err := p.primary.Departments(ctx, city)
		if err == nil && len(items) > 0 {
			return Result{Items: items}, nil
		}
		p.degrade("departments", city, err)
	}
	items, err := p.fallback.Departments(ctx, city)
	return Result{Items: items, Degraded: true}, err
}

func (p *FallbackProvider) degrade(what, city string, err error) {
	if err == nil {
		err = ErrEmptyAnswer
	}
	p.log.Warn("delivery provider unavailable, using static list",
		zap.String("lookup", what),
		zap.String("city", city),
		zap.Error(err))
}
