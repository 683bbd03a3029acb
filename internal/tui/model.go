// Package tui 是终端看板：输入股票代码、切换周期与回看天数，展示指标面板、K 线图和明细表。
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"stockBoard/internal/dashboard"
	"stockBoard/internal/model"
	"stockBoard/internal/trace"
)

// 代码输入框最长字符数
const maxCodeLen = 12

// 明细表最多显示行数
const maxTableRows = 15

// 界面提示
const (
	hintEmpty    = "请输入股票代码开始查询。"
	hintNotFound = "未找到该股票数据，请检查代码是否正确（如：600519）。"
	hintLoading  = "查询中..."
	helpLine     = "[Enter] 查询  [Tab] 周期  [↑/↓] 回看天数  [Ctrl+T] 明细  [Esc] 退出"
)

// Runner dashboard.Service 实现。
type Runner interface {
	Run(ctx context.Context, q dashboard.Query) dashboard.Result
}

// resultMsg 带发起时的序号，只有最新一次查询的结果会被采用。
type resultMsg struct {
	seq uint64
	res dashboard.Result
}

// Model bubbletea 模型。
type Model struct {
	ctx    context.Context
	runner Runner
	styles Styles

	code      string
	period    model.Period
	lookback  int
	loading   bool
	seq       uint64
	showTable bool
	result    *dashboard.Result

	width  int
	height int
}

// New 以初始查询构建模型；代码非空时启动即查询。
func New(ctx context.Context, runner Runner, initial dashboard.Query, st Styles) Model {
	initial = initial.Normalize()
	return Model{
		ctx:      ctx,
		runner:   runner,
		styles:   st,
		code:     initial.Code,
		period:   initial.Period,
		lookback: dashboard.ClampLookback(initial.LookbackDays),
		loading:  initial.Code != "",
		width:    100,
		height:   40,
	}
}

func (m Model) Init() tea.Cmd {
	if m.code == "" {
		return nil
	}
	return m.run()
}

// Query 当前输入对应的查询。
func (m Model) Query() dashboard.Query {
	return dashboard.Query{Code: m.code, Period: m.period, LookbackDays: m.lookback}
}

func (m *Model) run() tea.Cmd {
	m.loading = true
	m.seq++
	seq := m.seq
	ctx, runner, q := trace.WithTraceID(m.ctx, trace.NewTraceID()), m.runner, m.Query()
	return func() tea.Msg {
		return resultMsg{seq: seq, res: runner.Run(ctx, q)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		res := msg.res
		m.result = &res
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if strings.TrimSpace(m.code) == "" {
			m.seq++
			m.loading = false
			m.result = nil
			return m, nil
		}
		cmd := m.run()
		return m, cmd
	case tea.KeyTab:
		m.period = m.period.Next()
	case tea.KeyUp:
		m.lookback = dashboard.ClampLookback(m.lookback + dashboard.LookbackStep)
	case tea.KeyDown:
		m.lookback = dashboard.ClampLookback(m.lookback - dashboard.LookbackStep)
	case tea.KeyCtrlT:
		m.showTable = !m.showTable
	case tea.KeyBackspace:
		if r := []rune(m.code); len(r) > 0 {
			m.code = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.code = ""
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if unicode.IsPrint(r) && !unicode.IsSpace(r) && len([]rune(m.code)) < maxCodeLen {
				m.code += string(r)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(m.viewControls())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(st.Warn.Render(hintLoading))
	case m.result == nil:
		b.WriteString(st.Label.Render(hintEmpty))
	default:
		b.WriteString(m.viewResult(*m.result))
	}
	b.WriteString("\n\n")
	b.WriteString(st.Help.Render(helpLine))
	return b.String()
}

func (m Model) viewControls() string {
	st := m.styles
	code := m.code
	if code == "" {
		code = " "
	}
	return fmt.Sprintf("%s %s   %s %s   %s %d",
		st.Label.Render("股票代码"), st.Input.Render(code),
		st.Label.Render("周期"), st.Title.Render(string(m.period)),
		st.Label.Render("回看天数"), m.lookback)
}

func (m Model) viewResult(res dashboard.Result) string {
	st := m.styles
	switch res.Status {
	case dashboard.StatusNotFound:
		return st.Warn.Render(hintNotFound)
	case dashboard.StatusInvalid:
		return st.Err.Render(fmt.Sprintf("查询参数不合法: %v", res.Err))
	case dashboard.StatusQuoteFailed:
		return st.Err.Render(fmt.Sprintf("获取实时行情失败: %v", res.Err))
	}

	var b strings.Builder
	if res.Metrics != nil {
		b.WriteString(st.Title.Render(res.Metrics.Title))
		b.WriteString("\n")
		b.WriteString(m.viewMetrics(*res.Metrics))
	}
	switch res.Status {
	case dashboard.StatusHistoryFailed:
		b.WriteString("\n")
		b.WriteString(st.Err.Render(fmt.Sprintf("获取历史数据失败 (请检查代码是否正确): %v", cause(res.Err))))
	case dashboard.StatusOK:
		b.WriteString("\n")
		b.WriteString(st.Title.Render(res.ChartTitle))
		b.WriteString("\n")
		if chart := RenderChart(res.Bars, m.width-4, m.chartHeight(), st); chart != "" {
			b.WriteString(chart)
			b.WriteString("\n")
			b.WriteString(Legend(st))
		} else {
			b.WriteString(st.Warn.Render("终端窗口过小，请调整大小"))
		}
		if m.showTable {
			b.WriteString("\n")
			b.WriteString(st.Label.Render("历史数据详情"))
			b.WriteString("\n")
			b.WriteString(RenderTable(dashboard.Descending(res.Bars), maxTableRows))
		}
	}
	return b.String()
}

// cause 取 FetchError 的底层原因。
func cause(err error) error {
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return fe.Err
	}
	return err
}

func (m Model) chartHeight() int {
	h := m.height - 14
	if m.showTable {
		h -= maxTableRows + 4
	}
	return max(h, minChartHeight)
}

func (m Model) viewMetrics(mt dashboard.Metrics) string {
	st := m.styles
	delta := st.Flat
	switch mt.Direction {
	case dashboard.Up:
		delta = st.Up
	case dashboard.Down:
		delta = st.Down
	}
	cell := func(label, value string, vs lipgloss.Style) string {
		return st.Border.Render(st.Label.Render(label) + "\n" + vs.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("最新价", mt.Last+"  "+mt.Delta, delta),
		cell("最高", mt.High, st.Flat),
		cell("最低", mt.Low, st.Flat),
		cell("成交量(手)", mt.Volume, st.Flat),
	)
}

// RenderTable 按传入顺序渲染明细表，最多 limit 行。
func RenderTable(bars []model.HistoryBar, limit int) string {
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	rows := make([][]string, len(bars))
	for i, b := range bars {
		rows[i] = []string{
			b.Date.Format(model.BarDateLayout),
			fmt.Sprintf("%.2f", b.Open),
			fmt.Sprintf("%.2f", b.High),
			fmt.Sprintf("%.2f", b.Low),
			fmt.Sprintf("%.2f", b.Close),
			fmt.Sprintf("%.0f", b.Volume),
			maText(b.MA5.Valid, b.MA5.Float64),
			maText(b.MA20.Valid, b.MA20.Float64),
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Open", "High", "Low", "Close", "Volume", "MA5", "MA20").
		Rows(rows...).
		String()
}

func maText(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
