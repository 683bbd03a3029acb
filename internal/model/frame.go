package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame 提供方返回的原始表格：列名为提供方原生标签，单元格均为字符串，按返回顺序排列。
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Len 行数。
func (f Frame) Len() int { return len(f.Rows) }

// Index 返回列名所在下标，不存在返回 -1。
func (f Frame) Index(label string) int {
	for i, c := range f.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// Cell 返回第 row 行 label 列的值；列不存在或该行缺列时 ok=false。
func (f Frame) Cell(row int, label string) (string, bool) {
	i := f.Index(label)
	if i < 0 || row < 0 || row >= len(f.Rows) || i >= len(f.Rows[row]) {
		return "", false
	}
	return f.Rows[row][i], true
}

// Rename 按映射改列名，返回新 Frame；行数据共享，不做任何值转换。
func (f Frame) Rename(labels map[string]string) Frame {
	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		if to, ok := labels[c]; ok {
			cols[i] = to
			continue
		}
		cols[i] = c
	}
	return Frame{Columns: cols, Rows: f.Rows}
}

// ParseNumber 解析数值单元格；"-" 与空串（停牌、无成交）按 0 处理。
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}
