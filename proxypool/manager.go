package manager

import (
	"context"
	"errors"
	"fmt"
	"liuproxy_scanner/internal/shared/logger"
	"liuproxy_scanner/internal/shared/types"
	"liuproxy_scanner/proxypool/model"
	"liuproxy_scanner/proxypool/storage"
	"liuproxy_scanner/proxypool/validator"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
)

var (
	// ErrInput 表示代理列表无法读取，扫描无法开始。
	ErrInput = errors.New("input error")
	// ErrBaseline 表示无法确定本机的原始出口 IP。
	ErrBaseline = errors.New("baseline resolution error")
	// ErrOutput 表示输出文件无法创建或写入。
	ErrOutput = errors.New("output error")
)

// Summary 汇总一次扫描的结果。
type Summary struct {
	RunID   string
	Loaded  int // 读取到的非空行
	Skipped int // 解析失败被跳过的行
	Report  *validator.Report
}

// Manager 负责一次完整的扫描：清空输出 -> 读取列表 -> 解析 -> 基线 -> 验证 -> 保存。
type Manager struct {
	cfg       *types.Config
	storage   storage.Storage
	validator *validator.Validator
}

// NewManager 创建扫描管理器。
func NewManager(cfg *types.Config, storage storage.Storage, validator *validator.Validator) *Manager {
	return &Manager{
		cfg:       cfg,
		storage:   storage,
		validator: validator,
	}
}

// NewFromConfig wires storage, dialer, prober and validator from cfg.
func NewFromConfig(cfg *types.Config) (*Manager, error) {
	timeout := time.Duration(cfg.ScanConf.TimeoutSeconds) * time.Second

	dialer, err := validator.NewDialer(timeout, cfg.ProbeConf.UpstreamSocks5)
	if err != nil {
		return nil, err
	}
	prober, err := validator.NewTLSProber(dialer, validator.TLSOptions{
		Fingerprint:      cfg.ProbeConf.Fingerprint,
		MaxResponseBytes: cfg.ProbeConf.MaxResponseBytes,
	})
	if err != nil {
		return nil, err
	}
	v := validator.NewValidator(prober, validator.Options{
		Host:           cfg.ProbeConf.TargetHost,
		Path:           cfg.ProbeConf.TargetPath,
		Concurrency:    cfg.ScanConf.MaxConcurrent,
		Timeout:        timeout,
		DialsPerSecond: cfg.ScanConf.DialsPerSecond,
		Policy: validator.Policy{
			IPField:  cfg.ProbeConf.IPField,
			OrgField: cfg.ProbeConf.OrgField,
		},
	})

	fileStorage := storage.NewFileStorage(cfg.ScanConf.InputFile, cfg.ScanConf.OutputFile)
	var st storage.Storage = fileStorage
	if cfg.ScanConf.SourceURL != "" {
		st = storage.NewURLSource(cfg.ScanConf.SourceURL, fileStorage)
	}

	return NewManager(cfg, st, v), nil
}

// Run 执行一次扫描。只有输入、输出和基线错误会返回 error，单个代理的失败只影响其自身。
func (m *Manager) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	l := logger.WithComponent("ProxyPool/Manager").With().Str("run_id", runID).Logger()
	m.validator.SetLogger(logger.WithComponent("ProxyPool/Validator").With().Str("run_id", runID).Logger())

	l.Info().Msg("Starting proxy scan...")

	if err := m.storage.Reset(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	lines, err := m.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	l.Info().Int("count", len(lines)).Msg("Loaded proxies.")

	records := make([]model.ProxyRecord, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		rec, err := model.ParseLine(line)
		if err != nil {
			skipped++
			l.Warn().Err(err).Str("line", line).Msg("Skipping proxy line. Expected ip,port,country,org.")
			continue
		}
		records = append(records, rec)
	}

	baseline, err := m.validator.Baseline(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaseline, err)
	}

	var bar *pb.ProgressBar
	if m.cfg.ScanConf.Progress && len(records) > 0 {
		bar = pb.New(len(records))
		bar.SetWriter(os.Stdout)
		bar.Start()
		m.validator.SetProgress(bar)
	}

	report := m.validator.Validate(ctx, baseline, records)

	if bar != nil {
		bar.Finish()
	}

	summary := &Summary{
		RunID:   runID,
		Loaded:  len(lines),
		Skipped: skipped,
		Report:  report,
	}
	if err := m.storage.Save(report.Entries); err != nil {
		return summary, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	if report.Alive == 0 {
		l.Info().Msg("No active proxies found.")
	}
	l.Info().
		Int("loaded", len(lines)).
		Int("skipped", skipped).
		Int("processed", report.Total).
		Int("alive", report.Alive).
		Int("dead", report.Dead).
		Int("failed", report.Failed).
		Msg("Proxy checking completed.")

	return summary, nil
}
