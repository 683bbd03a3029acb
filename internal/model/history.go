package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// HistoryBar 单根 K 线：日期、开高低收、成交量，以及收盘价的 5/20 周期简单均线。
// 序列前 (window-1) 根的均线为 null。
type HistoryBar struct {
	Date   time.Time  `json:"date"`
	Open   float64    `json:"open"`
	High   float64    `json:"high"`
	Low    float64    `json:"low"`
	Close  float64    `json:"close"`
	Volume float64    `json:"volume"`
	MA5    null.Float `json:"ma5"`
	MA20   null.Float `json:"ma20"`
}

// 历史 K 线表列名（提供方原生标签），顺序与东方财富 fields2=f51..f61 一致
const (
	HistDate      = "日期"
	HistOpen      = "开盘"
	HistClose     = "收盘"
	HistHigh      = "最高"
	HistLow       = "最低"
	HistVolume    = "成交量"
	HistAmount    = "成交额"
	HistAmplitude = "振幅"
	HistChangePct = "涨跌幅"
	HistChange    = "涨跌额"
	HistTurnover  = "换手率"
)

// HistColumns 历史 K 线原始表的列顺序。
var HistColumns = []string{
	HistDate, HistOpen, HistClose, HistHigh, HistLow, HistVolume,
	HistAmount, HistAmplitude, HistChangePct, HistChange, HistTurnover,
}

// 规范化后的列名
const (
	ColDate   = "date"
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// BarDateLayout 历史 K 线日期格式（东方财富 klines 第一列）。
const BarDateLayout = "2006-01-02"
