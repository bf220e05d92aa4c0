package storage

import (
	"bufio"
	"fmt"
	"io"
	"liuproxy_scanner/internal/shared/logger"
	"liuproxy_scanner/proxypool/model"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage 接口定义了代理列表的读取和存活结果的持久化。
type Storage interface {
	// Reset 在扫描开始前创建并清空输出文件。
	Reset() error
	// Load 返回待检测的原始代理行（已去除空行与注释行）。
	Load() ([]string, error)
	// Save 用最终结果整体覆盖输出文件。
	Save(entries []model.AliveEntry) error
}

// FileStorage 实现了 Storage 接口，输入与输出均为纯文本文件。
type FileStorage struct {
	inputPath  string
	outputPath string
	mu         sync.Mutex
}

// NewFileStorage 创建一个新的 FileStorage 实例。
func NewFileStorage(inputPath, outputPath string) *FileStorage {
	return &FileStorage{
		inputPath:  inputPath,
		outputPath: outputPath,
	}
}

// Reset 创建输出目录并截断输出文件。
func (fs *FileStorage) Reset() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if dir := filepath.Dir(fs.outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(fs.outputPath)
	if err != nil {
		return fmt.Errorf("truncate output file: %w", err)
	}

	l := logger.WithComponent("ProxyPool/Storage")
	l.Info().Str("path", fs.outputPath).Msg("Output file cleared before scan.")
	return f.Close()
}

// Load 从输入文件读取代理行。文件不可读是致命错误，由调用方决定如何处理。
func (fs *FileStorage) Load() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := os.Open(fs.inputPath)
	if err != nil {
		return nil, fmt.Errorf("open proxy list: %w", err)
	}
	defer file.Close()

	lines, err := readLines(file)
	if err != nil {
		return nil, fmt.Errorf("read proxy list %s: %w", fs.inputPath, err)
	}

	l := logger.WithComponent("ProxyPool/Storage")
	l.Info().Str("path", fs.inputPath).Int("count", len(lines)).Msg("Loaded proxy lines from file.")
	return lines, nil
}

// Save 将存活代理整体写入输出文件，没有结果时文件保持为空。
func (fs *FileStorage) Save(entries []model.AliveEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}

	if err := os.WriteFile(fs.outputPath, []byte(sb.String()), 0644); err != nil {
		return err
	}

	l := logger.WithComponent("ProxyPool/Storage")
	l.Info().Str("path", fs.outputPath).Int("count", len(entries)).Msg("Saved alive proxies to file.")
	return nil
}

// readLines 返回非空且不以 '#' 开头的行。
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
