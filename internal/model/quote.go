// Package model 定义行情快照、历史 K 线、周期、日期区间与提供方原始表格等数据结构。
package model

// Quote 全市场快照中单只证券的一行：代码、名称、最新价、涨跌额、涨跌幅、最高、最低、成交量、成交额。
// 每次查询新建，不做持久化。
type Quote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Last      float64 `json:"last"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"` // 百分数，0.59 表示 0.59%
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    float64 `json:"volume"` // 成交量，提供方原值
	Amount    float64 `json:"amount"` // 成交额(元)
}

// 快照表列名（提供方原生标签）
const (
	SpotCode      = "代码"
	SpotName      = "名称"
	SpotLast      = "最新价"
	SpotChangePct = "涨跌幅"
	SpotChange    = "涨跌额"
	SpotVolume    = "成交量"
	SpotAmount    = "成交额"
	SpotAmplitude = "振幅"
	SpotHigh      = "最高"
	SpotLow       = "最低"
	SpotOpen      = "今开"
	SpotPrevClose = "昨收"
	SpotVolRatio  = "量比"
	SpotTurnover  = "换手率"
	SpotPE        = "市盈率-动态"
	SpotMarketCap = "总市值"
	SpotFloatCap  = "流通市值"
)
