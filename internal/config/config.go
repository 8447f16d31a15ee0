// Package config loads the host configuration for one sensor from TOML.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
	"github.com/seagrayinc/tcdlink/internal/command"
	"github.com/seagrayinc/tcdlink/internal/link"
)

// DefaultStallTimeout declares the link broken after this long without a valid frame.
const DefaultStallTimeout = 5 * time.Second

type Config struct {
	Frame ccdframe.Config

	// SerialPort names the CDC port directly; empty means look it up by VendorID/ProductID.
	SerialPort string
	BaudRate   int
	VendorID   uint16
	ProductID  uint16
	ReadSize   int

	StallTimeout    time.Duration
	CommandTimeout  time.Duration
	IntegrationTime uint32 // microseconds; 0 leaves the firmware default
}

func Default() Config {
	return Config{
		Frame:          ccdframe.DefaultConfig(),
		BaudRate:       link.DefaultBaudRate,
		VendorID:       link.STM32VID,
		ProductID:      link.CDCPID,
		ReadSize:       link.DefaultReadSize,
		StallTimeout:   DefaultStallTimeout,
		CommandTimeout: command.DefaultTimeout,
	}
}

type fileConfig struct {
	SampleCount       int    `toml:"sample_count"`
	RetentionBound    int    `toml:"retention_bound"`
	SampleMin         int    `toml:"sample_min"`
	SampleMax         int    `toml:"sample_max"`
	SerialPort        string `toml:"serial_port"`
	BaudRate          int    `toml:"baud_rate"`
	USBVendorID       int    `toml:"usb_vendor_id"`
	USBProductID      int    `toml:"usb_product_id"`
	ReadSize          int    `toml:"read_size"`
	StallTimeout      string `toml:"stall_timeout"`
	CommandTimeout    string `toml:"command_timeout"`
	IntegrationTimeUS int64  `toml:"integration_time_us"`
}

// Load reads path over the defaults. Keys absent from the file keep their default value.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown keys %v", undecoded)
	}
	return apply(Default(), raw, meta)
}

// Parse is Load for an in-memory document.
func Parse(doc string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(doc, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse config: unknown keys %v", undecoded)
	}
	return apply(Default(), raw, meta)
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if meta.IsDefined("sample_count") {
		cfg.Frame.SampleCount = raw.SampleCount
	}
	if meta.IsDefined("retention_bound") {
		cfg.Frame.RetentionBound = raw.RetentionBound
	}
	if meta.IsDefined("sample_min") {
		v, err := toUint16("sample_min", raw.SampleMin)
		if err != nil {
			return Config{}, err
		}
		cfg.Frame.SampleMin = v
	}
	if meta.IsDefined("sample_max") {
		v, err := toUint16("sample_max", raw.SampleMax)
		if err != nil {
			return Config{}, err
		}
		cfg.Frame.SampleMax = v
	}
	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("usb_vendor_id") {
		v, err := toUint16("usb_vendor_id", raw.USBVendorID)
		if err != nil {
			return Config{}, err
		}
		cfg.VendorID = v
	}
	if meta.IsDefined("usb_product_id") {
		v, err := toUint16("usb_product_id", raw.USBProductID)
		if err != nil {
			return Config{}, err
		}
		cfg.ProductID = v
	}
	if meta.IsDefined("read_size") {
		cfg.ReadSize = raw.ReadSize
	}
	if meta.IsDefined("stall_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.StallTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse stall_timeout: %w", err)
		}
		cfg.StallTimeout = d
	}
	if meta.IsDefined("command_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CommandTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse command_timeout: %w", err)
		}
		cfg.CommandTimeout = d
	}
	if meta.IsDefined("integration_time_us") {
		if raw.IntegrationTimeUS < command.MinIntegrationTimeUS || raw.IntegrationTimeUS > command.MaxIntegrationTimeUS {
			return Config{}, fmt.Errorf("integration_time_us %d not in %d..%d",
				raw.IntegrationTimeUS, command.MinIntegrationTimeUS, command.MaxIntegrationTimeUS)
		}
		cfg.IntegrationTime = uint32(raw.IntegrationTimeUS)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Frame.Validate(); err != nil {
		return err
	}
	if c.ReadSize <= 0 {
		return fmt.Errorf("read_size must be positive, got %d", c.ReadSize)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate)
	}
	if c.StallTimeout < 0 || c.CommandTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func toUint16(key string, v int) (uint16, error) {
	if v < 0 || v > 0xFFFF {
		return 0, fmt.Errorf("%s %d outside 0..65535", key, v)
	}
	return uint16(v), nil
}
