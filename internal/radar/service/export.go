package service

import (
	"context"
	"errors"
	"fmt"

	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"
	"token-radar/pkg/exporter"
)

// 导出类型
const (
	ExportNewTokens       = "new-tokens"
	ExportTrendingMemes   = "trending-memes"
	ExportComparisons     = "comparisons"
	ExportRecommendations = "recommendations"
	ExportDashboard       = "dashboard"

	FormatJSON = "json"
	FormatCSV  = "csv"
)

var ErrUnsupportedExport = errors.New("unsupported export")

var exportFiles = map[string][2]string{
	ExportNewTokens:       {store.NewTokensFile, store.NewTokensCSV},
	ExportTrendingMemes:   {store.TrendingMemesFile, store.TrendingMemesCSV},
	ExportComparisons:     {store.ComparisonsFile, store.ComparisonsCSV},
	ExportRecommendations: {store.RecommendationsFile, store.RecommendationsCSV},
	ExportDashboard:       {store.DashboardFile, ""},
}

// ExportFileName 校验类型和格式，返回输出文件名
func ExportFileName(kind, format string) (string, error) {
	files, ok := exportFiles[kind]
	if !ok {
		return "", fmt.Errorf("%w: type %q", ErrUnsupportedExport, kind)
	}
	switch format {
	case FormatJSON:
		return files[0], nil
	case FormatCSV:
		if files[1] == "" {
			return "", fmt.Errorf("%w: %s supports json only", ErrUnsupportedExport, kind)
		}
		return files[1], nil
	default:
		return "", fmt.Errorf("%w: format %q", ErrUnsupportedExport, format)
	}
}

// Export 重新计算对应数据并写入输出目录，返回文件路径
func (r *Radar) Export(ctx context.Context, kind, format string) (string, model.Source, error) {
	name, err := ExportFileName(kind, format)
	if err != nil {
		return "", "", err
	}

	var source model.Source
	switch kind {
	case ExportNewTokens:
		var tokens []model.Token
		if tokens, source, err = r.NewTokens(ctx); err != nil {
			return "", "", err
		}
		err = save(r.store, name, format, tokens, store.TokenColumns)

	case ExportTrendingMemes:
		var trending []model.TrendingToken
		if trending, source, err = r.Trending.Discover(ctx); err != nil {
			return "", "", err
		}
		err = save(r.store, name, format, trending, store.TrendingColumns)

	case ExportComparisons:
		var refs []model.TokenRef
		if refs, source, err = r.TrackedTokens(ctx); err != nil {
			return "", "", err
		}
		var rows []model.ComparisonRow
		var rowsSource model.Source
		if rows, _, rowsSource, err = r.Compare(ctx, refs); err != nil {
			return "", "", err
		}
		source = source.Merge(rowsSource)
		err = save(r.store, name, format, rows, store.ComparisonColumns)

	case ExportRecommendations:
		var recs []model.Recommendation
		if recs, _, source, err = r.Recommend(ctx, nil); err != nil {
			return "", "", err
		}
		err = save(r.store, name, format, recs, store.RecommendationColumns)

	case ExportDashboard:
		var d model.Dashboard
		if d, err = r.Dashboard(ctx); err != nil {
			return "", "", err
		}
		source = d.Source
	}
	if err != nil {
		return "", "", err
	}
	return r.store.Path(name), source, nil
}

func save[T any](fs *store.FileStore, name, format string, rows []T, columns []exporter.Column[T]) error {
	if format == FormatCSV {
		return store.SaveCSV(fs, name, rows, columns)
	}
	return fs.SaveJSON(name, rows)
}
