package infra

import (
	"context"
	"errors"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// FanoutStats repassa cada evento para todos os stores; um erro não impede os demais.
type FanoutStats []domain.StatsStore

var _ domain.StatsStore = FanoutStats(nil)

// NewFanoutStats ignora stores nil. Devolve nil se não sobrar nenhum.
func NewFanoutStats(stores ...domain.StatsStore) domain.StatsStore {
	var out FanoutStats
	for _, s := range stores {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

func (f FanoutStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
