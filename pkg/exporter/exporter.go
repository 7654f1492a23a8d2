package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Column CSV 列定义：表头 + 取值函数
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// ExportToJSON 序列化为缩进 JSON 并直接覆盖写入 path
func ExportToJSON(data any, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	b, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// ReadJSON 读取 path 并解码到 out
func ReadJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := sonic.ConfigStd.Unmarshal(b, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// ExportToCSV 按列定义写出 CSV，首行为表头
func ExportToCSV[T any](rows []T, columns []Column[T], path string) error {
	if len(columns) == 0 {
		return fmt.Errorf("export csv %s: no columns", path)
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = c.Value(row)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensure dir %s: %w", dir, err)
	}
	return nil
}
