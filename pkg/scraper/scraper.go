package scraper

import (
	"context"
	"fmt"
	"strings"

	"token-radar/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors 描述列表页的 CSS 选择器。Row 选出每一行，其余字段在行内查找；
// 字段选择器形如 "td.price" 或 "a.token@href"（@ 后为属性名）。
type Selectors struct {
	Row     string            `mapstructure:"row"`
	Fields  map[string]string `mapstructure:"fields"`
	MaxRows int               `mapstructure:"max_rows"`
}

// Record 一行抓取结果，key 为 Selectors.Fields 的字段名
type Record map[string]string

type Scraper struct {
	http *httpclient.HTTPClient
	tl   *zap.Logger
}

func New(http *httpclient.HTTPClient, logger *zap.Logger) *Scraper {
	return &Scraper{http: http, tl: logger}
}

// Scrape 拉取页面并按选择器解析
func (s *Scraper) Scrape(ctx context.Context, url string, sel Selectors, headers map[string]string) ([]Record, error) {
	body, err := s.http.GetText(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	records, err := Parse(body, sel)
	if err != nil {
		return nil, err
	}
	s.tl.Debug("scraped page", zap.String("url", url), zap.Int("rows", len(records)))
	return records, nil
}

// Parse 解析 HTML 文本，空字段的行会被跳过
func Parse(html string, sel Selectors) ([]Record, error) {
	if sel.Row == "" {
		return nil, fmt.Errorf("row selector is empty")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var records []Record
	doc.Find(sel.Row).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if sel.MaxRows > 0 && len(records) >= sel.MaxRows {
			return false
		}
		rec := make(Record, len(sel.Fields))
		for name, expr := range sel.Fields {
			if v := extract(row, expr); v != "" {
				rec[name] = v
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
		return true
	})

	return records, nil
}

func extract(row *goquery.Selection, expr string) string {
	css, attr, hasAttr := strings.Cut(expr, "@")
	target := row
	if css = strings.TrimSpace(css); css != "" {
		target = row.Find(css).First()
	}
	if hasAttr {
		v, _ := target.Attr(strings.TrimSpace(attr))
		return strings.TrimSpace(v)
	}
	return strings.Join(strings.Fields(target.Text()), " ")
}
