package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Ingest:  IngestConfig{MaxFileSize: 1, MaxRows: 10, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Output:  OutputConfig{DefaultFormat: "5160"},
		Session: SessionConfig{TTL: time.Hour, SweepInterval: time.Minute},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UploadLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want %v", cfg.Server.WriteTimeout, 30*time.Second)
	}
	if cfg.Ingest.MaxFileSize != 10485760 {
		t.Errorf("Ingest.MaxFileSize = %d, want %d", cfg.Ingest.MaxFileSize, 10485760)
	}
	if cfg.Ingest.MaxRows != 10000 {
		t.Errorf("Ingest.MaxRows = %d, want %d", cfg.Ingest.MaxRows, 10000)
	}
	if cfg.Ingest.MaxConcurrent != 5 {
		t.Errorf("Ingest.MaxConcurrent = %d, want %d", cfg.Ingest.MaxConcurrent, 5)
	}
	if cfg.Output.DefaultFormat != "5160" {
		t.Errorf("Output.DefaultFormat = %q, want %q", cfg.Output.DefaultFormat, "5160")
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 24*time.Hour)
	}
	if cfg.Session.StateFile != "" {
		t.Errorf("Session.StateFile = %q, want empty", cfg.Session.StateFile)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
	if !cfg.Security.EnableCSP {
		t.Error("Security.EnableCSP = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INGEST_MAX_CONCURRENT", "10")
	t.Setenv("OUTPUT_DEFAULT_FORMAT", "5163")
	t.Setenv("SESSION_STATE_FILE", "/var/lib/labelmerge/sessions.yaml")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Ingest.MaxConcurrent != 10 {
		t.Errorf("Ingest.MaxConcurrent = %d, want %d", cfg.Ingest.MaxConcurrent, 10)
	}
	if cfg.Output.DefaultFormat != "5163" {
		t.Errorf("Output.DefaultFormat = %q, want %q", cfg.Output.DefaultFormat, "5163")
	}
	if cfg.Session.StateFile != "/var/lib/labelmerge/sessions.yaml" {
		t.Errorf("Session.StateFile = %q", cfg.Session.StateFile)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// UPLOAD_MAX_FILE_SIZE works as fallback
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ingest.MaxFileSize != 2048 {
		t.Errorf("Ingest.MaxFileSize = %d, want %d", cfg.Ingest.MaxFileSize, 2048)
	}
}

func TestLoad_UnknownDefaultFormat(t *testing.T) {
	t.Setenv("OUTPUT_DEFAULT_FORMAT", "9999")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for unknown OUTPUT_DEFAULT_FORMAT")
	}
	if !strings.Contains(err.Error(), "OUTPUT_DEFAULT_FORMAT") || !strings.Contains(err.Error(), "5160") {
		t.Errorf("error should name the setting and the valid formats: %v", err)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "SESSION_TTL") {
		t.Errorf("error should mention SESSION_TTL: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("INGEST_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Ingest.MaxWaitTime != 90*time.Second {
		t.Errorf("Ingest.MaxWaitTime = %v, want %v", cfg.Ingest.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if !reflect.DeepEqual(cfg.Security.TrustedProxies, expected) {
		t.Errorf("TrustedProxies = %q, want %q", cfg.Security.TrustedProxies, expected)
	}
}

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestPopulate_Required(t *testing.T) {
	var target struct {
		Name string `env:"LABELMERGE_TEST_REQUIRED" required:"true"`
	}

	err := populate(reflect.ValueOf(&target).Elem(), mapLookup(nil))
	if err == nil || !strings.Contains(err.Error(), "LABELMERGE_TEST_REQUIRED") {
		t.Errorf("populate() error = %v, want missing required variable", err)
	}

	env := map[string]string{"LABELMERGE_TEST_REQUIRED": "set"}
	if err := populate(reflect.ValueOf(&target).Elem(), mapLookup(env)); err != nil {
		t.Fatalf("populate() error = %v", err)
	}
	if target.Name != "set" {
		t.Errorf("Name = %q, want set", target.Name)
	}
}

func TestLoadFrom_ReportsEveryBadVariable(t *testing.T) {
	_, err := LoadFrom(mapLookup(map[string]string{
		"SERVER_PORT":        "eighty",
		"SESSION_TTL":        "forever",
		"RATE_LIMIT_ENABLED": "maybe",
	}))
	if err == nil {
		t.Fatal("LoadFrom() expected error")
	}
	for _, name := range []string{"SERVER_PORT", "SESSION_TTL", "RATE_LIMIT_ENABLED"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestLoadFrom_EmptyValueFallsBackToDefault(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{"SERVER_PORT": ""}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"zero max rows", func(c *Config) { c.Ingest.MaxRows = 0 }, "INGEST_MAX_ROWS"},
		{"max rows above ceiling", func(c *Config) { c.Ingest.MaxRows = 20000 }, "INGEST_MAX_ROWS"},
		{"zero file size", func(c *Config) { c.Ingest.MaxFileSize = 0 }, "INGEST_MAX_FILE_SIZE"},
		{"unknown format", func(c *Config) { c.Output.DefaultFormat = "1" }, "OUTPUT_DEFAULT_FORMAT"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
		{"zero sweep interval", func(c *Config) { c.Session.SweepInterval = 0 }, "SESSION_SWEEP_INTERVAL"},
		{"zero rate", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"zero rate when disabled", func(c *Config) { c.Rate = RateLimitConfig{Enabled: false} }, ""},
		{"bad proxy cidr", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.0/33"} }, "TRUSTED_PROXIES"},
		{"single proxy ip", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.1"} }, ""},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should list every failure: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
		{"::1", 8080, "[::1]:8080"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_ShortensStateFile(t *testing.T) {
	cfg := validConfig()
	cfg.Session.StateFile = "/home/operator/private/sessions.yaml"

	str := cfg.String()
	if strings.Contains(str, "/home/operator") {
		t.Error("String() should not include the state file directory")
	}
	if !strings.Contains(str, "sessions.yaml") {
		t.Error("String() should include the state file name")
	}
}
