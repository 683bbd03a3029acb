package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"stockBoard/internal/dashboard"
	"stockBoard/internal/indicator"
	"stockBoard/internal/model"
)

type fakeRunner struct {
	res dashboard.Result
	got []dashboard.Query
}

func (f *fakeRunner) Run(_ context.Context, q dashboard.Query) dashboard.Result {
	f.got = append(f.got, q)
	r := f.res
	r.Query = q
	return r
}

func sampleBars(n int) []model.HistoryBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.HistoryBar, n)
	for i := range bars {
		c := 100 + float64(i%7) - float64(i%3)
		bars[i] = model.HistoryBar{
			Date: start.AddDate(0, 0, i), Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: 1000,
		}
	}
	indicator.ApplyMA(bars)
	return bars
}

func okResult() dashboard.Result {
	m := dashboard.NewMetrics(model.Quote{Code: "600519", Name: "贵州茅台", Last: 1700, Change: 10, ChangePct: 0.59, High: 1705, Low: 1690, Volume: 50000})
	return dashboard.Result{
		Status:     dashboard.StatusOK,
		Metrics:    &m,
		Bars:       sampleBars(30),
		ChartTitle: "Daily K-Line Chart",
	}
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func TestInitRunsInitialQuery(t *testing.T) {
	r := &fakeRunner{res: okResult()}
	m := New(context.Background(), r, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	require.True(t, m.loading)
	require.Contains(t, m.View(), hintLoading)

	cmd := m.Init()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.False(t, m.loading)
	require.Equal(t, []dashboard.Query{{Code: "600519", Period: model.Daily, LookbackDays: dashboard.DefaultLookbackDays}}, r.got)

	view := m.View()
	require.Contains(t, view, "贵州茅台 (600519)")
	require.Contains(t, view, "10.0 (0.59%)")
	require.Contains(t, view, "Daily K-Line Chart")
	require.NotContains(t, view, "历史数据详情")
}

func TestInitEmptyCode(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{}, NewStyles("9", "10"))
	require.Nil(t, m.Init())
	require.Contains(t, m.View(), hintEmpty)
}

func TestEditCode(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{}, NewStyles("9", "10"))
	m, _ = update(t, m, runes("0000 01"))
	require.Equal(t, "000001", m.code)
	m, _ = update(t, m, key(tea.KeyBackspace))
	require.Equal(t, "00000", m.code)
	m, _ = update(t, m, runes("1234567890"))
	require.Len(t, m.code, maxCodeLen)
	m, _ = update(t, m, key(tea.KeyCtrlU))
	require.Empty(t, m.code)

	m, cmd := update(t, m, key(tea.KeyEnter))
	require.Nil(t, cmd)
	require.Nil(t, m.result)
}

func TestPeriodAndLookbackKeys(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	m, _ = update(t, m, key(tea.KeyTab))
	require.Equal(t, model.Weekly, m.period)
	m, _ = update(t, m, key(tea.KeyTab))
	m, _ = update(t, m, key(tea.KeyTab))
	require.Equal(t, model.Daily, m.period)

	m, _ = update(t, m, key(tea.KeyUp))
	require.Equal(t, 150, m.lookback)
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key(tea.KeyDown))
	}
	require.Equal(t, dashboard.MinLookbackDays, m.lookback)
	for i := 0; i < 50; i++ {
		m, _ = update(t, m, key(tea.KeyUp))
	}
	require.Equal(t, dashboard.MaxLookbackDays, m.lookback)
}

func TestEnterRunsQuery(t *testing.T) {
	r := &fakeRunner{res: okResult()}
	m := New(context.Background(), r, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	m, _ = update(t, m, key(tea.KeyTab))
	m, cmd := update(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.True(t, m.loading)
	m, _ = update(t, m, cmd())
	require.Equal(t, model.Weekly, r.got[0].Period)
	require.NotNil(t, m.result)
}

type byCodeRunner map[string]model.Quote

func (r byCodeRunner) Run(_ context.Context, q dashboard.Query) dashboard.Result {
	m := dashboard.NewMetrics(r[q.Code])
	return dashboard.Result{Query: q, Status: dashboard.StatusOK, Metrics: &m, Bars: sampleBars(30), ChartTitle: "Daily K-Line Chart"}
}

func TestLatestQueryWins(t *testing.T) {
	r := byCodeRunner{
		"600519": {Code: "600519", Name: "贵州茅台", Last: 1700},
		"000001": {Code: "000001", Name: "平安银行", Last: 10.5},
	}
	m := New(context.Background(), r, dashboard.Query{}, NewStyles("9", "10"))
	m, _ = update(t, m, runes("600519"))
	m, first := update(t, m, key(tea.KeyEnter))
	m, _ = update(t, m, key(tea.KeyCtrlU))
	m, _ = update(t, m, runes("000001"))
	m, second := update(t, m, key(tea.KeyEnter))

	m, _ = update(t, m, second())
	require.False(t, m.loading)
	m, _ = update(t, m, first())

	view := m.View()
	require.Contains(t, view, "平安银行 (000001)")
	require.NotContains(t, view, "贵州茅台")
	require.Equal(t, "000001", m.result.Query.Code)
}

func TestEarlierResultKeepsLoading(t *testing.T) {
	r := byCodeRunner{"600519": {Code: "600519", Name: "贵州茅台"}}
	m := New(context.Background(), r, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	m, first := update(t, m, key(tea.KeyEnter))
	m, second := update(t, m, key(tea.KeyEnter))

	m, _ = update(t, m, first())
	require.True(t, m.loading)
	require.Nil(t, m.result)

	m, _ = update(t, m, second())
	require.False(t, m.loading)
	require.NotNil(t, m.result)
}

func TestEmptyEnterDropsPending(t *testing.T) {
	r := byCodeRunner{"600519": {Code: "600519", Name: "贵州茅台"}}
	m := New(context.Background(), r, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	m, cmd := update(t, m, key(tea.KeyEnter))
	m, _ = update(t, m, key(tea.KeyCtrlU))
	m, _ = update(t, m, key(tea.KeyEnter))
	require.False(t, m.loading)

	m, _ = update(t, m, cmd())
	require.Nil(t, m.result)
	require.Contains(t, m.View(), hintEmpty)
}

func TestToggleTable(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{Code: "600519"}, NewStyles("9", "10"))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})
	m, _ = update(t, m, resultMsg{res: okResult()})
	m, _ = update(t, m, key(tea.KeyCtrlT))
	require.True(t, m.showTable)

	view := m.View()
	require.Contains(t, view, "历史数据详情")
	require.Less(t, strings.Index(view, "2024-01-31"), strings.Index(view, "2024-01-30"))

	m, _ = update(t, m, key(tea.KeyCtrlT))
	require.False(t, m.showTable)
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{}, NewStyles("9", "10"))
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := update(t, m, key(k))
		require.NotNil(t, cmd)
		require.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestViewStatuses(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, dashboard.Query{Code: "999999"}, NewStyles("9", "10"))

	m, _ = update(t, m, resultMsg{res: dashboard.Result{Status: dashboard.StatusNotFound, Err: model.ErrNotFound}})
	require.Contains(t, m.View(), hintNotFound)

	m, _ = update(t, m, resultMsg{res: dashboard.Result{Status: dashboard.StatusQuoteFailed, Err: model.Failed("quote", errors.New("http 500"))}})
	require.Contains(t, m.View(), "获取实时行情失败")

	res := okResult()
	res.Status, res.Bars, res.Err = dashboard.StatusHistoryFailed, nil, model.Failed("history", errors.New("timeout"))
	m, _ = update(t, m, resultMsg{res: res})
	view := m.View()
	require.Contains(t, view, "贵州茅台 (600519)")
	require.Contains(t, view, "获取历史数据失败 (请检查代码是否正确): timeout")

	res = okResult()
	res.Status, res.Bars, res.ChartTitle = dashboard.StatusEmptyHistory, []model.HistoryBar{}, ""
	m, _ = update(t, m, resultMsg{res: res})
	view = m.View()
	require.Contains(t, view, "贵州茅台 (600519)")
	require.NotContains(t, view, "K-Line Chart")
	require.NotContains(t, view, "获取历史数据失败")
}

func TestRenderChart(t *testing.T) {
	st := NewStyles("9", "10")
	require.Empty(t, RenderChart(nil, 80, 20, st))
	require.Empty(t, RenderChart(sampleBars(10), 20, 5, st))
	require.NotEmpty(t, RenderChart(sampleBars(30), 80, 20, st))

	flat := []model.HistoryBar{{Date: time.Now(), Open: 10, High: 10, Low: 10, Close: 10, MA5: null.Float{}}}
	require.NotEmpty(t, RenderChart(flat, 80, 20, st))
}

func TestPriceBounds(t *testing.T) {
	lo, hi := priceBounds([]model.HistoryBar{{Low: 90, High: 110}, {Low: 95, High: 100}})
	require.InDelta(t, 89.0, lo, 1e-9)
	require.InDelta(t, 111.0, hi, 1e-9)
}

func TestRenderTable(t *testing.T) {
	bars := dashboard.Descending(sampleBars(25))
	out := RenderTable(bars, 3)
	require.Contains(t, out, "MA20")
	require.Contains(t, out, "2024-01-26")
	require.NotContains(t, out, "2024-01-23")
	require.Less(t, strings.Index(out, "2024-01-26"), strings.Index(out, "2024-01-24"))
}
