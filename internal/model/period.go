package model

import (
	"fmt"
	"strings"
	"time"
)

// Period K 线周期。
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Periods 可选周期，按界面切换顺序。
var Periods = []Period{Daily, Weekly, Monthly}

// ParsePeriod 解析周期，空串为 daily。
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: period %q", ErrInvalidQuery, s)
	}
}

// Next 下一个周期（循环）。
func (p Period) Next() Period {
	for i, v := range Periods {
		if v == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return Daily
}

// Klt 东方财富 K 线类型：101 日、102 周、103 月。
func (p Period) Klt() string {
	switch p {
	case Weekly:
		return "102"
	case Monthly:
		return "103"
	default:
		return "101"
	}
}

// Title 首字母大写，用于图表标题，如 "Daily K-Line Chart"。
func (p Period) Title() string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Adjust 复权方式。
type Adjust string

// ForwardAdjusted 前复权，固定使用，不对外开放配置。
const ForwardAdjusted Adjust = "qfq"

// Fqt 东方财富复权参数：不复权 0、前复权 1、后复权 2。
func (a Adjust) Fqt() string {
	switch a {
	case ForwardAdjusted:
		return "1"
	case "hfq":
		return "2"
	default:
		return "0"
	}
}

// CompactDateLayout 提供方边界使用的 8 位日期。
const CompactDateLayout = "20060102"

// DateRange 闭区间 [Start, End]，要求 Start 不晚于 End。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RangeFromLookback 以 now 为终点、往前 days 个自然日为起点。
func RangeFromLookback(now time.Time, days int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -days), End: now}
}

// Valid Start<=End（按日期比较）。
func (r DateRange) Valid() bool {
	return r.StartCompact() <= r.EndCompact()
}

func (r DateRange) StartCompact() string { return r.Start.Format(CompactDateLayout) }
func (r DateRange) EndCompact() string   { return r.End.Format(CompactDateLayout) }
