package tui

import "github.com/charmbracelet/lipgloss"

// 固定配色（涨跌色来自配置）
const (
	colorTitle = "14"  // 青
	colorWarn  = "11"  // 黄
	colorErr   = "9"   // 红
	colorFaint = "240" // 灰
	colorMA5   = "12"  // 蓝
	colorMA20  = "214" // 橙
	colorFlat  = "15"  // 白
)

// Styles 界面样式。
type Styles struct {
	Up     lipgloss.Style
	Down   lipgloss.Style
	Flat   lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Warn   lipgloss.Style
	Err    lipgloss.Style
	Help   lipgloss.Style
	Input  lipgloss.Style
	MA5    lipgloss.Style
	MA20   lipgloss.Style
	Border lipgloss.Style
}

// NewStyles increasing/decreasing 为 lipgloss 颜色值（ANSI 序号或 #rrggbb）。
func NewStyles(increasing, decreasing string) Styles {
	return Styles{
		Up:     lipgloss.NewStyle().Foreground(lipgloss.Color(increasing)),
		Down:   lipgloss.NewStyle().Foreground(lipgloss.Color(decreasing)),
		Flat:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorFlat)),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorTitle)),
		Label:  lipgloss.NewStyle().Faint(true),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn)),
		Err:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorErr)),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorFaint)),
		Input:  lipgloss.NewStyle().Bold(true).Underline(true),
		MA5:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMA5)),
		MA20:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMA20)),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
