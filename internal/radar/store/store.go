package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"token-radar/internal/radar/model"
	"token-radar/pkg/exporter"

	"go.uber.org/zap"
)

// 输出文件名
const (
	TokenListFile       = "token_list.json"
	NewTokensFile       = "new_tokens.json"
	TokenMetricsFile    = "token_metrics.json"
	TrendingMemesFile   = "trending_memes.json"
	RecommendationsFile = "recommendations.json"
	ComparisonsFile     = "comparisons.json"
	DashboardFile       = "dashboard.json"

	ComparisonsCSV     = "comparisons.csv"
	FilteredTokensCSV  = "filtered_tokens.csv"
	RecommendationsCSV = "recommendations.csv"
	NewTokensCSV       = "new_tokens.csv"
	TrendingMemesCSV   = "trending_memes.csv"
)

// FileStore 输出目录下的快照文件，每次整体覆盖写；进程内写操作串行
type FileStore struct {
	dir string
	tl  *zap.Logger
	mu  sync.Mutex
}

func New(dir string, tl *zap.Logger) *FileStore {
	return &FileStore{dir: dir, tl: tl}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveJSON 写入失败只记录日志并返回错误
func (s *FileStore) SaveJSON(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := exporter.ExportToJSON(v, s.Path(name)); err != nil {
		s.tl.Error("save json failed", zap.String("file", name), zap.Error(err))
		return err
	}
	s.tl.Debug("saved json", zap.String("file", name))
	return nil
}

// LoadJSON 文件不存在时返回 false 且不报错
func (s *FileStore) LoadJSON(name string, out any) (bool, error) {
	err := exporter.ReadJSON(s.Path(name), out)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		s.tl.Warn("load json failed", zap.String("file", name), zap.Error(err))
		return false, err
	}
	return true, nil
}

// SaveCSV 泛型函数不能作为方法
func SaveCSV[T any](s *FileStore, name string, rows []T, columns []exporter.Column[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := exporter.ExportToCSV(rows, columns, s.Path(name)); err != nil {
		s.tl.Error("save csv failed", zap.String("file", name), zap.Error(err))
		return err
	}
	return nil
}

// LoadTokenList 上一次保存的完整 token 列表，不存在时为空
func (s *FileStore) LoadTokenList() ([]model.Token, error) {
	var tokens []model.Token
	if _, err := s.LoadJSON(TokenListFile, &tokens); err != nil {
		return nil, fmt.Errorf("load token list: %w", err)
	}
	return tokens, nil
}
