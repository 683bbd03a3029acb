package dashboard

import (
	"context"

	"stockBoard/internal/model"
)

type fakeQuotes struct {
	store map[string]model.Quote
	err   error
	calls int
}

func (f *fakeQuotes) FetchQuote(_ context.Context, code string) (model.Quote, error) {
	f.calls++
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
	bars    []model.HistoryBar
	err     error
	calls   int
	gotRng  model.DateRange
	gotCode string
	gotPer  model.Period
}

func (f *fakeHistory) FetchHistory(_ context.Context, code string, period model.Period, rng model.DateRange) ([]model.HistoryBar, error) {
	f.calls++
	f.gotCode, f.gotPer, f.gotRng = code, period, rng
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}
