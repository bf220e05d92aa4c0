package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
	"liuproxy_scanner/internal/shared/types"
)

// LoadIni 加载 scanner.ini 行为配置文件。
// 文件中缺失的键保留 cfg 中已有的值；文件不存在时只应用环境变量覆盖。
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.LooseLoad(fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return err
	}

	overrideFromEnvInt(&cfg.ScanConf.MaxConcurrent, "SCANNER_MAX_CONCURRENT")
	overrideFromEnvInt(&cfg.ScanConf.TimeoutSeconds, "SCANNER_TIMEOUT_SECONDS")
	overrideFromEnvString(&cfg.ScanConf.InputFile, "SCANNER_INPUT_FILE")
	overrideFromEnvString(&cfg.ScanConf.OutputFile, "SCANNER_OUTPUT_FILE")

	return Validate(cfg)
}

// Validate rejects values no scan can run with.
func Validate(cfg *types.Config) error {
	if cfg.ScanConf.MaxConcurrent <= 0 {
		return fmt.Errorf("scan.max_concurrent must be positive, got %d", cfg.ScanConf.MaxConcurrent)
	}
	if cfg.ScanConf.TimeoutSeconds <= 0 {
		return fmt.Errorf("scan.timeout_seconds must be positive, got %d", cfg.ScanConf.TimeoutSeconds)
	}
	if cfg.ScanConf.DialsPerSecond < 0 {
		return fmt.Errorf("scan.dials_per_second must not be negative, got %d", cfg.ScanConf.DialsPerSecond)
	}
	if cfg.ScanConf.OutputFile == "" {
		return fmt.Errorf("scan.output_file is required")
	}
	if cfg.ProbeConf.TargetHost == "" || cfg.ProbeConf.TargetPath == "" {
		return fmt.Errorf("probe.target_host and probe.target_path are required")
	}
	return nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}
