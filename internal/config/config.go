package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 支持的LLM提供方
const (
	ProviderGemini = "gemini"
	ProviderQwen   = "qwen"
	ProviderOpenAI = "openai"
)

// 支持的PDF解析引擎
const (
	PDFEngineEino       = "eino"
	PDFEngineLedongthuc = "ledongthuc"
)

// ErrMissingAPIKey 当前LLM提供方缺少API凭证
var ErrMissingAPIKey = errors.New("未配置LLM API密钥")

// Config 应用程序配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// LLM模型配置
	LLM LLMConfig `yaml:"llm"`

	// PDF解析配置
	PDF PDFConfig `yaml:"pdf"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`

	// 链路追踪配置
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string `yaml:"address"`       // 例如 ":8080" or "0.0.0.0:8080"
	MaxUploadMB int    `yaml:"max_upload_mb"` // 上传文件大小上限(MB)
}

// LLMConfig 定义外部大模型客户端的配置
type LLMConfig struct {
	Provider         string  `yaml:"provider"` // gemini, qwen, openai
	APIKey           string  `yaml:"api_key"`
	APIURL           string  `yaml:"api_url"` // 仅OpenAI兼容接口使用
	Model            string  `yaml:"model"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	CallTimeout      string  `yaml:"call_timeout"`       // 单次调用超时，例如 "60s"
	QPM              int     `yaml:"qpm"`                // 每分钟请求数限制
	MaxRetries       int     `yaml:"max_retries"`        // 最大重试次数
	RetryWaitSeconds int     `yaml:"retry_wait_seconds"` // 首次重试等待时间(秒)，之后指数退避
}

// PDFConfig PDF文本提取配置
type PDFConfig struct {
	Engine  string `yaml:"engine"`  // eino 或 ledongthuc
	Timeout string `yaml:"timeout"` // 单个文档的提取超时
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// TracingConfig OpenTelemetry 导出配置
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"` // OTLP gRPC 地址，例如 "localhost:4317"
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// LoadDotEnv 尽力加载 .env 文件，文件不存在时静默跳过
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// godotenv.Load 不会覆盖已存在的环境变量
		_ = godotenv.Load(p)
	}
}

// LoadConfig 从文件加载配置，并应用环境变量覆盖和默认值
// configPath 为空时只使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
			return nil, fmt.Errorf("配置文件不存在: %s", configPath)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}

	// 凭证按提供方读取；LLM_API_KEY 对所有提供方生效
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case ProviderQwen:
		if v := os.Getenv("DASHSCOPE_API_KEY"); v != "" {
			cfg.LLM.APIKey = v
		}
	case ProviderOpenAI:
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.LLM.APIKey = v
		}
	default:
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			cfg.LLM.APIKey = v
		}
	}
}

// applyDefaults 为缺省字段填充默认值
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080" // 默认服务器地址
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 16
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderGemini
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case ProviderQwen:
			cfg.LLM.Model = "qwen-plus"
		case ProviderOpenAI:
			cfg.LLM.Model = "gpt-4o-mini"
		default:
			cfg.LLM.Model = "gemini-1.5-pro"
		}
	}
	if cfg.LLM.APIURL == "" {
		switch cfg.LLM.Provider {
		case ProviderQwen:
			cfg.LLM.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
		case ProviderOpenAI:
			cfg.LLM.APIURL = "https://api.openai.com/v1/chat/completions"
		}
	}
	if cfg.LLM.CallTimeout == "" {
		cfg.LLM.CallTimeout = "60s"
	}
	if cfg.LLM.QPM <= 0 {
		cfg.LLM.QPM = 30
	}
	if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}
	if cfg.LLM.RetryWaitSeconds <= 0 {
		cfg.LLM.RetryWaitSeconds = 2
	}

	cfg.PDF.Engine = strings.ToLower(strings.TrimSpace(cfg.PDF.Engine))
	if cfg.PDF.Engine == "" {
		cfg.PDF.Engine = PDFEngineEino
	}
	if cfg.PDF.Timeout == "" {
		cfg.PDF.Timeout = "30s"
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "pretty"
	}
	if cfg.Logger.TimeFormat == "" {
		cfg.Logger.TimeFormat = "2006-01-02 15:04:05"
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "resume-insight"
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = "localhost:4317"
	}
}

// Validate 校验启动所需的配置项，缺少凭证视为启动配置错误
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderQwen, ProviderOpenAI:
	default:
		return fmt.Errorf("不支持的LLM提供方: %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("%w (provider=%s)", ErrMissingAPIKey, c.LLM.Provider)
	}
	if c.LLM.Provider != ProviderGemini && c.LLM.APIURL == "" {
		return fmt.Errorf("provider %s 需要配置 llm.api_url", c.LLM.Provider)
	}

	switch c.PDF.Engine {
	case PDFEngineEino, PDFEngineLedongthuc:
	default:
		return fmt.Errorf("不支持的PDF解析引擎: %q", c.PDF.Engine)
	}

	if _, err := time.ParseDuration(c.LLM.CallTimeout); err != nil {
		return fmt.Errorf("llm.call_timeout 格式错误: %w", err)
	}
	if _, err := time.ParseDuration(c.PDF.Timeout); err != nil {
		return fmt.Errorf("pdf.timeout 格式错误: %w", err)
	}
	return nil
}

// LLMTimeout 单次LLM调用的超时时间
func (c *Config) LLMTimeout() time.Duration {
	return GetDuration(c.LLM.CallTimeout, 60*time.Second)
}

// PDFTimeout 单个PDF的提取超时时间
func (c *Config) PDFTimeout() time.Duration {
	return GetDuration(c.PDF.Timeout, 30*time.Second)
}

// RetryWait 首次重试前的等待时间
func (c *Config) RetryWait() time.Duration {
	return time.Duration(c.LLM.RetryWaitSeconds) * time.Second
}

// MaxUploadBytes 上传请求体上限(字节)
func (c *Config) MaxUploadBytes() int {
	return c.Server.MaxUploadMB * 1024 * 1024
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
