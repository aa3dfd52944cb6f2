// Package config reads the JSON configuration file shared by the docsmith
// executables.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/assemble"
	"github.com/lvillar/docsmith/handoff"
)

// Duration is a time.Duration written as a Go duration string ("150ms").
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration must be a string like \"10s\": %s", b)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Server configures the HTTP server.
type Server struct {
	Addr       string   `json:"addr"`
	SessionTTL Duration `json:"sessionTTL"`
}

// Log configures logging.
type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Export configures the export pipeline.
type Export struct {
	Engine        string   `json:"engine"`
	PDFScale      float64  `json:"pdfScale"`
	PNGScale      float64  `json:"pngScale"`
	OutDir        string   `json:"outDir"`
	ProgressDelay Duration `json:"progressDelay"`
	Compress      *bool    `json:"compress,omitempty"`
}

// Images configures remote image loading.
type Images struct {
	Timeout   Duration `json:"timeout"`
	Retries   int      `json:"retries"`
	UserAgent string   `json:"userAgent"`
	CacheTTL  Duration `json:"cacheTTL"`
	BaseDir   string   `json:"baseDir"`
}

// Handoff configures the preview handoff store.
type Handoff struct {
	Backend       string   `json:"backend"`
	RedisAddr     string   `json:"redisAddr"`
	RedisPassword string   `json:"redisPassword"`
	RedisDB       int      `json:"redisDB"`
	RedisPrefix   string   `json:"redisPrefix"`
	TTL           Duration `json:"ttl"`
}

// Suggest configures the suggestion client.
type Suggest struct {
	Endpoint string   `json:"endpoint"`
	Timeout  Duration `json:"timeout"`
	Retries  int      `json:"retries"`
}

// Handoff backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the root of the configuration file.
type Config struct {
	Server  Server  `json:"server"`
	Log     Log     `json:"log"`
	Export  Export  `json:"export"`
	Images  Images  `json:"images"`
	Handoff Handoff `json:"handoff"`
	Suggest Suggest `json:"suggest"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", SessionTTL: Duration(30 * time.Minute)},
		Log:    Log{Level: "info", Format: "json"},
		Export: Export{
			Engine:        string(assemble.EngineFPDF),
			PDFScale:      docsmith.DefaultPDFScale,
			PNGScale:      docsmith.DefaultPNGScale,
			OutDir:        ".",
			ProgressDelay: Duration(150 * time.Millisecond),
		},
		Images: Images{
			Timeout:   Duration(15 * time.Second),
			Retries:   2,
			UserAgent: "docsmith/1.0",
			CacheTTL:  Duration(10 * time.Minute),
		},
		Handoff: Handoff{
			Backend:     BackendMemory,
			RedisAddr:   "localhost:6379",
			RedisPrefix: handoff.DefaultRedisPrefix,
			TTL:         Duration(handoff.DefaultTTL),
		},
		Suggest: Suggest{Timeout: Duration(20 * time.Second), Retries: 1},
	}
}

// WithDefaults returns c with every unset field taken from Default.
func (c Config) WithDefaults() Config {
	d := Default()
	setString(&c.Server.Addr, d.Server.Addr)
	setDuration(&c.Server.SessionTTL, d.Server.SessionTTL)
	setString(&c.Log.Level, d.Log.Level)
	setString(&c.Log.Format, d.Log.Format)
	setString(&c.Export.Engine, d.Export.Engine)
	if c.Export.PDFScale <= 0 {
		c.Export.PDFScale = d.Export.PDFScale
	}
	if c.Export.PNGScale <= 0 {
		c.Export.PNGScale = d.Export.PNGScale
	}
	setString(&c.Export.OutDir, d.Export.OutDir)
	setDuration(&c.Export.ProgressDelay, d.Export.ProgressDelay)
	setDuration(&c.Images.Timeout, d.Images.Timeout)
	if c.Images.Retries <= 0 {
		c.Images.Retries = d.Images.Retries
	}
	setString(&c.Images.UserAgent, d.Images.UserAgent)
	setDuration(&c.Images.CacheTTL, d.Images.CacheTTL)
	setString(&c.Handoff.Backend, d.Handoff.Backend)
	setString(&c.Handoff.RedisAddr, d.Handoff.RedisAddr)
	setString(&c.Handoff.RedisPrefix, d.Handoff.RedisPrefix)
	setDuration(&c.Handoff.TTL, d.Handoff.TTL)
	setDuration(&c.Suggest.Timeout, d.Suggest.Timeout)
	if c.Suggest.Retries <= 0 {
		c.Suggest.Retries = d.Suggest.Retries
	}
	return c
}

func setString(p *string, v string) {
	if strings.TrimSpace(*p) == "" {
		*p = v
	}
}

func setDuration(p *Duration, v Duration) {
	if *p <= 0 {
		*p = v
	}
}

// Compression reports whether PDF streams are compressed. Unset means yes.
func (e Export) Compression() bool {
	return e.Compress == nil || *e.Compress
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := assemble.ParseEngine(c.Export.Engine); err != nil {
		errs = append(errs, fmt.Errorf("export.engine: %w", err))
	}
	if c.Export.PDFScale <= 0 || c.Export.PNGScale <= 0 {
		errs = append(errs, errors.New("export: scales must be positive"))
	}
	switch strings.ToLower(c.Handoff.Backend) {
	case BackendMemory:
	case BackendRedis:
		if c.Handoff.RedisAddr == "" {
			errs = append(errs, errors.New("handoff.redisAddr: required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("handoff.backend: unknown backend %q", c.Handoff.Backend))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Suggest.Endpoint != "" && !strings.HasPrefix(c.Suggest.Endpoint, "http://") && !strings.HasPrefix(c.Suggest.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("suggest.endpoint: not an http(s) URL: %q", c.Suggest.Endpoint))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Parse decodes a configuration document, applies defaults and validates.
// Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	var c Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads path. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}
