package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInputNotFound is returned when the input file does not exist at startup.
	ErrInputNotFound = errors.New("cannot find input file")
	// ErrMissingFlag is returned when a required flag is absent or empty.
	ErrMissingFlag = errors.New("missing required flag")
	// ErrInvalidPort is returned when the port is not an integer.
	ErrInvalidPort = errors.New("port must be an integer")
)

// Config holds the startup parameters. It is not modified after Load returns.
type Config struct {
	InputPath string
	Host      string
	Port      int

	LogLevel string

	RequestTimeout time.Duration

	RateLimitRPS   int // 0 disables the limiter
	RateLimitBurst int

	// AdminAddr is the listen address for /health and /metrics; empty disables it.
	AdminAddr string

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	DegradedWindow   time.Duration
	DegradedErrorPct int
}

// Addr returns the main listener address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type fileConfig struct {
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Admin struct {
		Addr string `yaml:"addr"`
	} `yaml:"admin"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Lifecycle struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`
}

// Load parses command-line arguments (without the program name) and the optional
// YAML file named by -c. -i/--input, -h/--host and -p/--port are required and the
// input file must exist. LOG_LEVEL and ADMIN_ADDR override the file.
func Load(args []string) (*Config, error) {
	return load(args, io.Discard)
}

// LoadWithUsage is Load but prints flag usage and parse errors to out.
func LoadWithUsage(args []string, out io.Writer) (*Config, error) {
	return load(args, out)
}

func load(args []string, out io.Writer) (*Config, error) {
	var input, host, port, configPath string
	fs := flag.NewFlagSet("rainfall-xml-service", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&input, "i", "", "path to input JSON file")
	fs.StringVar(&input, "input", "", "path to input JSON file")
	fs.StringVar(&host, "h", "", "server host")
	fs.StringVar(&host, "host", "", "server host")
	fs.StringVar(&port, "p", "", "server port")
	fs.StringVar(&port, "port", "", "server port")
	fs.StringVar(&configPath, "c", "", "optional YAML file with service tuning")
	fs.StringVar(&configPath, "config", "", "optional YAML file with service tuning")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range []struct{ name, val string }{{"--input", input}, {"--host", host}, {"--port", port}} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFlag, strings.Join(missing, ", "))
	}

	portNum, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, port)
	}

	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return nil, fmt.Errorf("stat input file: %w", err)
	}

	var fc fileConfig
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{
		InputPath: input,
		Host:      host,
		Port:      portNum,
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.Log.Level
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = 0
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}

	cfg.AdminAddr = strings.TrimSpace(os.Getenv("ADMIN_ADDR"))
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = strings.TrimSpace(fc.Admin.Addr)
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 15*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 5*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Lifecycle.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 || cfg.DegradedErrorPct > 100 {
		cfg.DegradedErrorPct = 50
	}

	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
