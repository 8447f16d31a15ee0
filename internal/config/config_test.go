package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tcdlink.toml")
	doc := `
sample_count = 128
retention_bound = 4096
sample_max = 1023
usb_vendor_id = 0x1234
stall_timeout = "2s"
integration_time_us = 500
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Frame.SampleCount != 128 || cfg.Frame.RetentionBound != 4096 {
		t.Fatalf("unexpected frame geometry: %+v", cfg.Frame)
	}
	if cfg.Frame.SampleMax != 1023 || cfg.Frame.SampleMin != 0 {
		t.Fatalf("unexpected sample range: %+v", cfg.Frame)
	}
	if cfg.VendorID != 0x1234 {
		t.Fatalf("unexpected vendor id: 0x%04X", cfg.VendorID)
	}
	if cfg.ProductID != Default().ProductID {
		t.Fatalf("product id default lost: 0x%04X", cfg.ProductID)
	}
	if cfg.StallTimeout != 2*time.Second {
		t.Fatalf("unexpected stall timeout: %v", cfg.StallTimeout)
	}
	if cfg.CommandTimeout != time.Second {
		t.Fatalf("unexpected command timeout: %v", cfg.CommandTimeout)
	}
	if cfg.IntegrationTime != 500 {
		t.Fatalf("unexpected integration time: %d", cfg.IntegrationTime)
	}
}

func TestParseEmptyIsDefault(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("empty document changed defaults: %+v", cfg)
	}
	if cfg.Frame.FrameSize() != 7402 {
		t.Fatalf("unexpected default frame size %d", cfg.Frame.FrameSize())
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown key", doc: `pixel_count = 3`, want: "unknown keys"},
		{name: "bad duration", doc: `stall_timeout = "soon"`, want: "stall_timeout"},
		{name: "sample max range", doc: `sample_max = 70000`, want: "sample_max"},
		{name: "integration time", doc: `integration_time_us = 5`, want: "integration_time_us"},
		{name: "read size", doc: `read_size = 0`, want: "read_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Parse(`sample_count = 0`); !errors.Is(err, ccdframe.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseSerialPort(t *testing.T) {
	cfg, err := Parse(`
serial_port = " /dev/ttyACM1 "
baud_rate = 921600
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyACM1" || cfg.BaudRate != 921600 {
		t.Fatalf("unexpected serial settings: %q %d", cfg.SerialPort, cfg.BaudRate)
	}

	if _, err := Parse("baud_rate = 0"); err == nil {
		t.Fatal("expected error for zero baud rate")
	}
}
