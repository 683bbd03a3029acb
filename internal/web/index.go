package web

import (
	_ "embed"
	"html/template"
	"net/http"

	"stockBoard/internal/trace"

	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Increasing string
	Decreasing string
}

// index 颜色来自配置；lipgloss 的 ANSI 序号在网页中没有意义，按常见序号换算。
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{Increasing: cssColor(s.chart.IncreasingColor, "red"), Decreasing: cssColor(s.chart.DecreasingColor, "green")}
	if err := indexTmpl.Execute(w, data); err != nil {
		trace.Logger(r.Context()).Warn("web: render index", zap.Error(err))
	}
}

var ansiCSS = map[string]string{
	"1": "darkred", "2": "darkgreen", "3": "olive", "4": "navy",
	"9": "red", "10": "green", "11": "gold", "12": "blue",
	"13": "magenta", "14": "cyan", "15": "white", "0": "black",
}

func cssColor(c, fallback string) string {
	if c == "" {
		return fallback
	}
	if v, ok := ansiCSS[c]; ok {
		return v
	}
	return c
}
