package tui

import (
	"fmt"
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/guregu/null/v6"

	"stockBoard/internal/model"
)

// 图表尺寸下限
const (
	minChartWidth  = 40
	minChartHeight = 12
)

// 实体半宽（x 轴单位，1 为相邻两根 K 线间距）
const bodyHalfWidth = 0.3

// priceBounds 取全部最高最低价，外扩 5%。
func priceBounds(bars []model.HistoryBar) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	margin := (hi - lo) * 0.05
	if margin < 0.0001 {
		margin = math.Max(math.Abs(lo)*0.005, 0.01)
	}
	return lo - margin, hi + margin
}

func yLabel(_ int, v float64) string {
	switch {
	case v >= 100:
		return fmt.Sprintf("%.1f", v)
	case v >= 1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// RenderChart 以盲文字符画 K 线（影线 + 实体）与 MA5、MA20；没有数据或终端过小返回空串。
func RenderChart(bars []model.HistoryBar, width, height int, st Styles) string {
	if len(bars) == 0 || width < minChartWidth || height < minChartHeight {
		return ""
	}
	lo, hi := priceBounds(bars)
	xLabel := func(_ int, v float64) string {
		i := int(math.Round(v))
		if i < 0 || i >= len(bars) {
			return ""
		}
		return bars[i].Date.Format("01-02")
	}
	lc := linechart.New(width, height,
		-1, float64(len(bars)),
		lo, hi,
		linechart.WithXYSteps(6, 5),
		linechart.WithXLabelFormatter(xLabel),
		linechart.WithYLabelFormatter(yLabel),
		linechart.WithStyles(st.Label, st.Label, st.Flat),
	)
	for i, b := range bars {
		style := candleStyle(b, st)
		x := float64(i)
		lc.DrawBrailleLineWithStyle(canvas.Float64Point{X: x, Y: b.Low}, canvas.Float64Point{X: x, Y: b.High}, style)
		top, bottom := math.Max(b.Open, b.Close), math.Min(b.Open, b.Close)
		for _, dx := range []float64{-bodyHalfWidth, -bodyHalfWidth / 2, bodyHalfWidth / 2, bodyHalfWidth} {
			lc.DrawBrailleLineWithStyle(canvas.Float64Point{X: x + dx, Y: bottom}, canvas.Float64Point{X: x + dx, Y: top}, style)
		}
	}
	drawMA(&lc, bars, func(b model.HistoryBar) null.Float { return b.MA5 }, st.MA5)
	drawMA(&lc, bars, func(b model.HistoryBar) null.Float { return b.MA20 }, st.MA20)
	lc.DrawXYAxisAndLabel()
	return lc.View()
}

func candleStyle(b model.HistoryBar, st Styles) lipgloss.Style {
	switch {
	case b.Close > b.Open:
		return st.Up
	case b.Close < b.Open:
		return st.Down
	default:
		return st.Flat
	}
}

// drawMA 连接相邻两个有值的均线点；null 处断开。
func drawMA(lc *linechart.Model, bars []model.HistoryBar, pick func(model.HistoryBar) null.Float, style lipgloss.Style) {
	for i := 1; i < len(bars); i++ {
		a, b := pick(bars[i-1]), pick(bars[i])
		if !a.Valid || !b.Valid {
			continue
		}
		lc.DrawBrailleLineWithStyle(
			canvas.Float64Point{X: float64(i - 1), Y: a.Float64},
			canvas.Float64Point{X: float64(i), Y: b.Float64},
			style,
		)
	}
}

// Legend 图例一行。
func Legend(st Styles) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		st.Up.Render("█ 涨"), st.Down.Render("█ 跌"), st.MA5.Render("── MA5"), st.MA20.Render("── MA20"))
}
