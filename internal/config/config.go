// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Click strategy names accepted by suite.click_strategy.
const (
	ClickNative = "native"
	ClickForced = "forced"
	ClickAuto   = "auto"
)

// Report format names accepted by report.format.
const (
	ReportText  = "text"
	ReportJSON  = "json"
	ReportJUnit = "junit"
)

// ReportFormats lists the accepted report formats. "xml" is also taken as junit.
func ReportFormats() []string { return []string{ReportText, ReportJSON, ReportJUnit} }

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Suite() SuiteConfig
	Credentials() CredentialsConfig
	Report() ReportConfig
	Database() DatabaseConfig

	// Suite Setters
	SetSuiteBaseURL(string)
	SetSuiteTimeout(time.Duration)
	SetSuiteClickStrategy(string)
	SetSuiteInclude([]string)

	// Browser Setters
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration.
// Fields are exported for viper's decoder; callers should go through the Interface getters.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	SuiteCfg       SuiteConfig       `mapstructure:"suite" yaml:"suite"`
	CredentialsCfg CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	ReportCfg      ReportConfig      `mapstructure:"report" yaml:"report"`
	DatabaseCfg    DatabaseConfig    `mapstructure:"database" yaml:"database"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Suite() SuiteConfig             { return c.SuiteCfg }
func (c *Config) Credentials() CredentialsConfig { return c.CredentialsCfg }
func (c *Config) Report() ReportConfig           { return c.ReportCfg }
func (c *Config) Database() DatabaseConfig       { return c.DatabaseCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetSuiteBaseURL(u string)        { c.SuiteCfg.BaseURL = u }
func (c *Config) SetSuiteTimeout(d time.Duration) { c.SuiteCfg.Timeout = d }
func (c *Config) SetSuiteClickStrategy(s string)  { c.SuiteCfg.ClickStrategy = s }
func (c *Config) SetSuiteInclude(ids []string)    { c.SuiteCfg.Include = ids }
func (c *Config) SetBrowserHeadless(b bool)       { c.BrowserCfg.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// WindowSize is the browser viewport in CSS pixels.
type WindowSize struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig is the fixed profile every session is launched with.
type BrowserConfig struct {
	Headless            bool          `mapstructure:"headless" yaml:"headless"`
	DisableSandbox      bool          `mapstructure:"disable_sandbox" yaml:"disable_sandbox"`
	DisableSharedMemory bool          `mapstructure:"disable_shared_memory" yaml:"disable_shared_memory"`
	DisableGPU          bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	WindowSize          WindowSize    `mapstructure:"window_size" yaml:"window_size"`
	ImplicitWait        time.Duration `mapstructure:"implicit_wait" yaml:"implicit_wait"`
	RemoteDebuggingPort int           `mapstructure:"remote_debugging_port" yaml:"remote_debugging_port"`
	ExecPath            string        `mapstructure:"exec_path" yaml:"exec_path"`
	Args                []string      `mapstructure:"args" yaml:"args"`
	LaunchTimeout       time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// SuiteConfig tunes how scenarios run against the storefront.
type SuiteConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ClickStrategy     string        `mapstructure:"click_strategy" yaml:"click_strategy"`
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	TeardownTimeout   time.Duration `mapstructure:"teardown_timeout" yaml:"teardown_timeout"`
	Parallelism       int           `mapstructure:"parallelism" yaml:"parallelism"`
	StartRate         float64       `mapstructure:"start_rate" yaml:"start_rate"`
	Include           []string      `mapstructure:"include" yaml:"include"`
}

// ResolvedClickStrategy maps "auto" onto a concrete strategy for the given profile.
// Headless profiles get forced clicks.
func (s SuiteConfig) ResolvedClickStrategy(headless bool) string {
	switch strings.ToLower(s.ClickStrategy) {
	case ClickNative:
		return ClickNative
	case ClickForced:
		return ClickForced
	}
	if headless {
		return ClickForced
	}
	return ClickNative
}

// CredentialsConfig holds the accounts used by the login scenarios.
type CredentialsConfig struct {
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"-"`
	InvalidUsername string `mapstructure:"invalid_username" yaml:"invalid_username"`
	InvalidPassword string `mapstructure:"invalid_password" yaml:"-"`
}

// ReportConfig controls where the run report goes.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DatabaseConfig holds the database connection details. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "storefront-e2e")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_sandbox", true)
	v.SetDefault("browser.disable_shared_memory", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.window_size.width", 1920)
	v.SetDefault("browser.window_size.height", 1080)
	v.SetDefault("browser.implicit_wait", "10s")
	v.SetDefault("browser.remote_debugging_port", 0)
	v.SetDefault("browser.launch_timeout", "45s")

	// -- Suite --
	v.SetDefault("suite.base_url", "https://www.saucedemo.com/")
	v.SetDefault("suite.timeout", "10s")
	v.SetDefault("suite.click_strategy", ClickAuto)
	v.SetDefault("suite.poll_interval", "250ms")
	v.SetDefault("suite.navigation_timeout", "60s")
	v.SetDefault("suite.settle_delay", "0s")
	v.SetDefault("suite.teardown_timeout", "15s")
	v.SetDefault("suite.parallelism", 1)
	v.SetDefault("suite.start_rate", 0.0)

	// -- Credentials --
	v.SetDefault("credentials.username", "standard_user")
	v.SetDefault("credentials.password", "secret_sauce")
	v.SetDefault("credentials.invalid_username", "wrong_user")
	v.SetDefault("credentials.invalid_password", "wrong_pass")

	// -- Report --
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	_ = v.BindEnv("credentials.password", "STOREFRONT_CREDENTIALS_PASSWORD")
	_ = v.BindEnv("database.url", "STOREFRONT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.SuiteCfg.Validate(); err != nil {
		return fmt.Errorf("suite configuration invalid: %w", err)
	}
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.ReportCfg.Validate(); err != nil {
		return fmt.Errorf("report configuration invalid: %w", err)
	}
	if c.BrowserCfg.RemoteDebuggingPort > 0 && c.SuiteCfg.Parallelism > 1 {
		return fmt.Errorf("a fixed remote_debugging_port cannot be shared by %d parallel sessions", c.SuiteCfg.Parallelism)
	}
	return nil
}

// Validate checks the suite settings.
func (s *SuiteConfig) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", s.BaseURL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if s.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be a positive duration")
	}
	if s.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	switch strings.ToLower(s.ClickStrategy) {
	case ClickNative, ClickForced, ClickAuto:
	default:
		return fmt.Errorf("click_strategy must be one of %q, %q or %q, got %q", ClickNative, ClickForced, ClickAuto, s.ClickStrategy)
	}
	if s.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1")
	}
	if s.StartRate < 0 {
		return fmt.Errorf("start_rate must not be negative")
	}
	return nil
}

// Validate checks the report format.
func (r *ReportConfig) Validate() error {
	switch strings.ToLower(r.Format) {
	case "", ReportText, ReportJSON, ReportJUnit, "xml":
		return nil
	}
	return fmt.Errorf("format must be one of %v, got %q", ReportFormats(), r.Format)
}

// Validate checks the browser profile.
func (b *BrowserConfig) Validate() error {
	if b.WindowSize.Width <= 0 || b.WindowSize.Height <= 0 {
		return fmt.Errorf("window_size must have positive width and height")
	}
	if b.ImplicitWait < 0 {
		return fmt.Errorf("implicit_wait must not be negative")
	}
	if b.RemoteDebuggingPort < 0 || b.RemoteDebuggingPort > 65535 {
		return fmt.Errorf("remote_debugging_port %d out of range", b.RemoteDebuggingPort)
	}
	if b.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be a positive duration")
	}
	return nil
}
