package types

// ScanConf 控制一次扫描的输入输出与并发。
type ScanConf struct {
	InputFile      string `ini:"input_file"`
	OutputFile     string `ini:"output_file"`
	SourceURL      string `ini:"source_url"` // 可选: 远程代理列表, 优先于 InputFile
	MaxConcurrent  int    `ini:"max_concurrent"`
	TimeoutSeconds int    `ini:"timeout_seconds"`
	DialsPerSecond int    `ini:"dials_per_second"` // 0 表示不限速
	Progress       bool   `ini:"progress"`
}

// ProbeConf 描述诊断端点以及探测连接的建立方式。
type ProbeConf struct {
	TargetHost       string `ini:"target_host"`
	TargetPath       string `ini:"target_path"`
	IPField          string `ini:"ip_field"`
	OrgField         string `ini:"org_field"`
	Fingerprint      string `ini:"fingerprint"`     // go, chrome, firefox, safari
	UpstreamSocks5   string `ini:"upstream_socks5"` // host:port, 为空则直连
	MaxResponseBytes int64  `ini:"max_response_bytes"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config 是扫描器的统一配置结构体
type Config struct {
	ScanConf  `ini:"scan"`
	ProbeConf `ini:"probe"`
	LogConf   `ini:"log"`
}

// DefaultConfig returns the values used when the ini file omits a key.
func DefaultConfig() *Config {
	return &Config{
		ScanConf: ScanConf{
			InputFile:      "Data/ProxyIsp.txt",
			OutputFile:     "Data/alive.txt",
			MaxConcurrent:  75,
			TimeoutSeconds: 5,
		},
		ProbeConf: ProbeConf{
			TargetHost:       "speed.cloudflare.com",
			TargetPath:       "/meta",
			IPField:          "clientIp",
			OrgField:         "asOrganization",
			Fingerprint:      "go",
			MaxResponseBytes: 1 << 20,
		},
		LogConf: LogConf{
			Level: "info",
		},
	}
}
