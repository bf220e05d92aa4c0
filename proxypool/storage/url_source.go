package storage

import (
	"fmt"
	"liuproxy_scanner/internal/shared/logger"
	"net/http"
	"time"
)

const sourceUserAgent = "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/42.0.2311.135 Safari/537.36 Edge/12.10240"

// URLSource 先从远程 URL 拉取代理列表，拉取失败或结果为空时回退到本地文件。
// 输出仍由内嵌的 FileStorage 负责。
type URLSource struct {
	*FileStorage
	url    string
	client *http.Client
}

// NewURLSource wraps fs so that Load prefers the list served at url.
func NewURLSource(url string, fs *FileStorage) *URLSource {
	return &URLSource{
		FileStorage: fs,
		url:         url,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Load 优先使用远程列表。
func (s *URLSource) Load() ([]string, error) {
	l := logger.WithComponent("ProxyPool/Storage")

	lines, err := s.fetch()
	if err != nil {
		l.Warn().Err(err).Str("url", s.url).Msg("Failed to fetch remote proxy list, falling back to file.")
	} else if len(lines) > 0 {
		l.Info().Str("url", s.url).Int("count", len(lines)).Msg("Loaded proxy lines from URL.")
		return lines, nil
	} else {
		l.Warn().Str("url", s.url).Msg("Remote proxy list is empty, falling back to file.")
	}

	return s.FileStorage.Load()
}

func (s *URLSource) fetch() ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", sourceUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return readLines(resp.Body)
}

var (
	_ Storage = (*URLSource)(nil)
	_ Storage = (*FileStorage)(nil)
)
