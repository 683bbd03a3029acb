// Package indicator 计算基于收盘价的技术指标。
package indicator

import (
	"github.com/guregu/null/v6"

	"stockBoard/internal/model"
)

// 均线窗口
const (
	WindowMA5  = 5
	WindowMA20 = 20
)

// SMA 返回与 closes 等长的简单移动平均序列：下标 i >= window-1 时为 closes[i-window+1..i] 的算术平均，
// 之前为 null。window<=0 时全部为 null。
func SMA(closes []float64, window int) []null.Float {
	out := make([]null.Float, len(closes))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(closes); i++ {
		out[i] = null.FloatFrom(maNAt(closes, window, len(closes)-1-i))
	}
	return out
}

// maNAt 计算以第 (len-offset-1) 个收盘价为末的 n 期均价，offset 0 表示最后一根。
func maNAt(closes []float64, n, offset int) float64 {
	start := len(closes) - n - offset
	var sum float64
	for i := start; i < start+n; i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// Closes 取出收盘价。
func Closes(bars []model.HistoryBar) []float64 {
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}
	return closes
}

// ApplyMA 按序写入 MA5、MA20（就地修改传入切片，调用方在构造阶段使用）。
func ApplyMA(bars []model.HistoryBar) {
	closes := Closes(bars)
	ma5 := SMA(closes, WindowMA5)
	ma20 := SMA(closes, WindowMA20)
	for i := range bars {
		bars[i].MA5 = ma5[i]
		bars[i].MA20 = ma20[i]
	}
}
