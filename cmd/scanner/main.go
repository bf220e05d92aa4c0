package main

import (
	"context"
	"flag"
	"fmt"
	"liuproxy_scanner/internal/shared/config"
	"liuproxy_scanner/internal/shared/logger"
	"liuproxy_scanner/internal/shared/types"
	manager "liuproxy_scanner/proxypool"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	configDir := flag.String("configdir", "configs", "Path to config directory")
	input := flag.String("input", "", "Proxy list file (overrides scan.input_file)")
	output := flag.String("output", "", "Alive proxy output file (overrides scan.output_file)")
	sourceURL := flag.String("url", "", "Remote proxy list URL (overrides scan.source_url)")
	flag.Parse()

	iniPath := filepath.Join(*configDir, "scanner.ini")

	// 1. 加载 .ini 配置, 文件缺失时使用默认值
	cfg := types.DefaultConfig()
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.ScanConf.InputFile = *input
	}
	if *output != "" {
		cfg.ScanConf.OutputFile = *output
	}
	if *sourceURL != "" {
		cfg.ScanConf.SourceURL = *sourceURL
	}

	// 1.1 初始化日志系统
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 组装扫描器
	m, err := manager.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize scanner")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 执行扫描
	summary, err := m.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Proxy scan aborted")
		stop()
		os.Exit(1)
	}

	logger.Info().
		Str("output", cfg.ScanConf.OutputFile).
		Int("alive", summary.Report.Alive).
		Int("processed", summary.Report.Total).
		Msgf("%d of %d loaded proxies are alive", summary.Report.Alive, summary.Loaded)
}
