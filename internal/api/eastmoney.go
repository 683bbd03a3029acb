// Package api 封装东方财富全市场快照与历史 K 线接口，含请求节流、并发上限与 trace 日志。
// 每次调用只请求一次，不做重试；失败由调用方上报。
package api

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"stockBoard/internal/model"
	"stockBoard/internal/trace"
)

// 东方财富接口地址
const (
	EastMoneySpotURL  = "https://82.push2.eastmoney.com/api/qt/clist/get"
	EastMoneyKLineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
)

// 沪深京 A 股：深主板、创业板、沪主板、科创板、北交所
const spotMarkets = "m:0 t:6,m:0 t:80,m:1 t:2,m:1 t:23,m:0 t:81 s:2048"

// 快照字段：f12 代码 f14 名称 f2 最新价 f3 涨跌幅 f4 涨跌额 f5 成交量 f6 成交额 f7 振幅
// f15 最高 f16 最低 f17 今开 f18 昨收 f10 量比 f8 换手率 f9 市盈率 f20 总市值 f21 流通市值
var spotFields = []struct {
	key   string
	label string
}{
	{"f12", model.SpotCode},
	{"f14", model.SpotName},
	{"f2", model.SpotLast},
	{"f3", model.SpotChangePct},
	{"f4", model.SpotChange},
	{"f5", model.SpotVolume},
	{"f6", model.SpotAmount},
	{"f7", model.SpotAmplitude},
	{"f15", model.SpotHigh},
	{"f16", model.SpotLow},
	{"f17", model.SpotOpen},
	{"f18", model.SpotPrevClose},
	{"f10", model.SpotVolRatio},
	{"f8", model.SpotTurnover},
	{"f9", model.SpotPE},
	{"f20", model.SpotMarketCap},
	{"f21", model.SpotFloatCap},
}

// K 线字段：f51 日期 f52 开盘 f53 收盘 f54 最高 f55 最低 f56 成交量 f57 成交额 f58 振幅 f59 涨跌幅 f60 涨跌额 f61 换手率
const (
	klineFields1 = "f1,f2,f3,f4,f5,f6"
	klineFields2 = "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61"
)

// 公共 ut 参数
const (
	spotUT  = "bd1d9ddb04089700cf9c27f6f7426281"
	klineUT = "7eea3edcaed734bea9cbfc24409ed989"
)

// 分页上限，防止 total 异常时死循环
const maxSpotPages = 200

// 请求超时与防封
const (
	maxRespLogLen        = 600
	defaultHTTPTimeout   = 10 * time.Second
	defaultPageSize      = 100
	defaultRequestGap    = 200 * time.Millisecond
	defaultRequestJitter = 150 * time.Millisecond
	defaultMaxConcurrent = 4
)

// 请求头（模拟浏览器）
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer        = "https://quote.eastmoney.com/"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	HTTPClient HTTPClient
	SpotURL    string
	KLineURL   string
	PageSize   int

	requestGap    time.Duration
	requestJitter time.Duration
	sem           chan struct{}
	lastReqMu     sync.Mutex
	lastReqTime   time.Time
}

// Option 调整 Client。
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端（测试注入）。
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithPacing 设置请求最小间隔与随机抖动，均为 0 时不节流。
func WithPacing(gap, jitter time.Duration) Option {
	return func(c *Client) {
		c.requestGap = gap
		c.requestJitter = jitter
	}
}

// WithMaxConcurrent 出站并发上限。
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		HTTPClient:    &http.Client{Timeout: defaultHTTPTimeout},
		SpotURL:       EastMoneySpotURL,
		KLineURL:      EastMoneyKLineURL,
		PageSize:      defaultPageSize,
		requestGap:    defaultRequestGap,
		requestJitter: defaultRequestJitter,
		sem:           make(chan struct{}, defaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) paceRequest(ctx context.Context) {
	gap, jitter := c.requestGap, c.requestJitter
	if gap <= 0 && jitter <= 0 {
		return
	}
	c.lastReqMu.Lock()
	elapsed := time.Since(c.lastReqTime)
	c.lastReqMu.Unlock()
	d := gap - elapsed
	if jitter > 0 {
		d += time.Duration(rand.Int63n(int64(jitter) + 1))
	}
	if d > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}
	}
	c.lastReqMu.Lock()
	c.lastReqTime = time.Now()
	c.lastReqMu.Unlock()
}

// get 单次 GET，返回 200 响应体；非 200、网络错误均直接返回错误。
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	c.paceRequest(ctx)
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
			defer func() { <-c.sem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", acceptLanguage)
	trace.Log(ctx, "api: req GET %s", rawURL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	trace.Log(ctx, "api: resp status=%d len=%d body=%s", resp.StatusCode, len(body), truncateForLog(body))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, nil
}

func truncateForLog(b []byte) string {
	s := string(b)
	if len(b) > maxRespLogLen {
		s = s[:maxRespLogLen] + "..."
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

// Snapshot 分页拉取沪深京 A 股实时行情，返回以中文列名为表头的原始表格。
func (c *Client) Snapshot(ctx context.Context) (model.Frame, error) {
	frame := model.Frame{Columns: spotColumns()}
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	trace.Log(ctx, "api: Snapshot start")
	for page := 1; page <= maxSpotPages; page++ {
		body, err := c.get(ctx, c.spotURL(page, pageSize))
		if err != nil {
			return model.Frame{}, fmt.Errorf("snapshot page %d: %w", page, err)
		}
		total, count, err := parseSpotPage(body, &frame)
		if err != nil {
			return model.Frame{}, fmt.Errorf("snapshot page %d: %w", page, err)
		}
		if count == 0 || total <= frame.Len() || count < pageSize {
			break
		}
	}
	trace.Log(ctx, "api: Snapshot done len=%d", frame.Len())
	return frame, nil
}

func (c *Client) spotURL(page, pageSize int) string {
	fields := make([]string, len(spotFields))
	for i, f := range spotFields {
		fields[i] = f.key
	}
	q := url.Values{}
	q.Set("pn", strconv.Itoa(page))
	q.Set("pz", strconv.Itoa(pageSize))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("ut", spotUT)
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fid", "f3")
	q.Set("fs", spotMarkets)
	q.Set("fields", strings.Join(fields, ","))
	return c.SpotURL + "?" + q.Encode()
}

func spotColumns() []string {
	cols := make([]string, len(spotFields))
	for i, f := range spotFields {
		cols[i] = f.label
	}
	return cols
}

// parseSpotPage 解析 data.total 与 data.diff（数组或以 "0","1",... 为键的对象），追加到 frame。
// data 为 null 视为本页无数据。
func parseSpotPage(body []byte, frame *model.Frame) (total int, count int, err error) {
	if !gjson.ValidBytes(body) {
		return 0, 0, fmt.Errorf("api: invalid json")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return 0, 0, nil
	}
	total = int(data.Get("total").Int())
	diff := data.Get("diff")
	if !diff.IsArray() && !diff.IsObject() {
		return total, 0, nil
	}
	diff.ForEach(func(_, item gjson.Result) bool {
		code := strings.TrimSpace(item.Get("f12").String())
		if code == "" {
			return true
		}
		row := make([]string, len(spotFields))
		for i, f := range spotFields {
			row[i] = strings.TrimSpace(item.Get(f.key).String())
		}
		frame.Rows = append(frame.Rows, row)
		count++
		return true
	})
	return total, count, nil
}

// HistoryFrame 拉取 [start, end]（8 位日期）内的 K 线，period 决定 klt，adjust 决定 fqt。
// 无数据（data 为 null 或 klines 为空）返回空表格且不报错。
func (c *Client) HistoryFrame(ctx context.Context, code string, period model.Period, start, end string, adjust model.Adjust) (model.Frame, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Frame{}, fmt.Errorf("api: empty code")
	}
	q := url.Values{}
	q.Set("fields1", klineFields1)
	q.Set("fields2", klineFields2)
	q.Set("ut", klineUT)
	q.Set("klt", period.Klt())
	q.Set("fqt", adjust.Fqt())
	q.Set("secid", FormatCode(code))
	q.Set("beg", start)
	q.Set("end", end)
	body, err := c.get(ctx, c.KLineURL+"?"+q.Encode())
	if err != nil {
		return model.Frame{}, fmt.Errorf("kline %s: %w", code, err)
	}
	return parseKlinesGJSON(body)
}

// parseKlinesGJSON data.klines 每条为 "日期,开盘,收盘,最高,最低,成交量,成交额,振幅,涨跌幅,涨跌额,换手率"。
func parseKlinesGJSON(body []byte) (model.Frame, error) {
	frame := model.Frame{Columns: append([]string(nil), model.HistColumns...)}
	if !gjson.ValidBytes(body) {
		return model.Frame{}, fmt.Errorf("api: invalid json")
	}
	klines := gjson.GetBytes(body, "data.klines")
	if !klines.Exists() || klines.Type == gjson.Null {
		return frame, nil
	}
	if !klines.IsArray() {
		return model.Frame{}, fmt.Errorf("api: data.klines is not an array")
	}
	for i, v := range klines.Array() {
		s := strings.TrimSpace(v.String())
		if s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		if len(parts) < len(frame.Columns) {
			return model.Frame{}, fmt.Errorf("api: kline %d has %d fields, want %d", i, len(parts), len(frame.Columns))
		}
		frame.Rows = append(frame.Rows, parts[:len(frame.Columns)])
	}
	return frame, nil
}

// FormatCode 转为东方财富 secid：上海 1.600519，深圳/北京 0.000001，北交所 0.920001
func FormatCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "0.000000"
	}
	switch {
	case strings.HasPrefix(code, "92"): // 北交所 92 开头
		return "0." + code
	case code[0] == '6', code[0] == '5', code[0] == '9':
		return "1." + code
	default:
		return "0." + code
	}
}
