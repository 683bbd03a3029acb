package web

import (
	"context"

	"stockBoard/internal/dashboard"
	"stockBoard/internal/model"
)

type fakeQuotes struct {
	store map[string]model.Quote
	err   error
}

func (f *fakeQuotes) FetchQuote(_ context.Context, code string) (model.Quote, error) {
	if f.err != nil {
		return model.Quote{}, f.err
	}
	q, ok := f.store[code]
	if !ok {
		return model.Quote{}, model.ErrNotFound
	}
	return q, nil
}

type fakeHistory struct {
	bars   []model.HistoryBar
	err    error
	gotRng model.DateRange
	gotPer model.Period
}

func (f *fakeHistory) FetchHistory(_ context.Context, _ string, period model.Period, rng model.DateRange) ([]model.HistoryBar, error) {
	f.gotRng, f.gotPer = rng, period
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, dashboard.Query) dashboard.Result { panic("boom") }
