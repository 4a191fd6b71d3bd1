package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves one environment key. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults,
// normalizes list and enum values, and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load over an arbitrary key source. Every malformed variable is
// reported, not just the first one.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := decodeSection(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// source describes where a field's value comes from, read from its
// env, envAlt, default and required tags.
type source struct {
	keys     []string
	fallback string
	required bool
}

func sourceOf(f reflect.StructField) (source, bool) {
	env := f.Tag.Get("env")
	if env == "" {
		return source{}, false
	}
	src := source{
		keys:     []string{env},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		src.keys = append(src.keys, alt)
	}
	return src, true
}

// resolve returns the first non-empty key value, else the default.
func (s source) resolve(lookup LookupFunc) (string, error) {
	for _, k := range s.keys {
		if v, ok := lookup(k); ok && v != "" {
			return v, nil
		}
	}
	if s.required {
		return "", fmt.Errorf("required environment variable %s is not set", s.keys[0])
	}
	return s.fallback, nil
}

// decodeSection fills the tagged fields of a section struct, recursing into
// nested sections.
func decodeSection(v reflect.Value, lookup LookupFunc) error {
	var errs []error
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if err := decodeSection(fv, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		src, ok := sourceOf(f)
		if !ok {
			continue
		}
		raw, err := src.resolve(lookup)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if raw == "" {
			continue
		}
		if err := decodeValue(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", src.keys[0], raw, err))
		}
	}
	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

// decodeValue parses raw into the field's type.
func decodeValue(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list of %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalize canonicalizes values that are compared case-insensitively.
// Extensions gain a leading dot so "csv" and ".CSV" both match uploads.
func (c *Config) normalize() {
	for i, ext := range c.Processing.AllowedExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Processing.AllowedExtensions[i] = ext
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation only applies when history is persisted
	if c.Database.Enabled() {
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Processing validation
	if c.Processing.MaxFileSize <= 0 {
		errs = append(errs, "PROCESSING_MAX_FILE_SIZE must be positive")
	}
	if c.Processing.MaxConcurrent <= 0 {
		errs = append(errs, "PROCESSING_MAX_CONCURRENT must be positive")
	}
	if c.Processing.MaxWaitTime <= 0 {
		errs = append(errs, "PROCESSING_MAX_WAIT_TIME must be positive")
	}
	if c.Processing.PollInterval <= 0 {
		errs = append(errs, "PROCESSING_POLL_INTERVAL must be positive")
	}
	if len(c.Processing.AllowedExtensions) == 0 {
		errs = append(errs, "PROCESSING_ALLOWED_EXTENSIONS must list at least one extension")
	}

	// Export validation
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		errs = append(errs, "EXPORT_OUTPUT_DIR must not be empty")
	}
	if strings.TrimSpace(c.Export.CounterFile) == "" {
		errs = append(errs, "EXPORT_COUNTER_FILE must not be empty")
	}

	// History validation
	if c.History.RetentionDays <= 0 {
		errs = append(errs, "HISTORY_RETENTION_DAYS must be positive")
	}
	if c.History.PruneInterval <= 0 {
		errs = append(errs, "HISTORY_PRUNE_INTERVAL must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	db := "[NONE]"
	if c.Database.Enabled() {
		db = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		db, c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Processing: {MaxFileSize: %d, MaxConcurrent: %d, PollInterval: %s}, ",
		c.Processing.MaxFileSize, c.Processing.MaxConcurrent, c.Processing.PollInterval))
	b.WriteString(fmt.Sprintf("Export: {OutputDir: %q, CounterFile: %q}, ",
		c.Export.OutputDir, c.Export.CounterFile))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
