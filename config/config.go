// Package config defines the structures to configure the landmark server and the locate command.
package config

import (
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	rutils "go.viam.com/landmark/utils"
)

// Defaults applied by Validate to fields left empty.
const (
	DefaultBindAddress       = ":4567"
	DefaultMaxUploadBytes    = 50 << 20
	DefaultGridPix           = 32
	DefaultMaxPixels         = 50_000_000
	DefaultClassifierType    = "watson"
	DefaultClassifierVersion = "2018-03-19"
	DefaultClassifierID      = "default"
	DefaultThreshold         = 0.6
	DefaultLabel             = "building"
	DefaultFakeLuminance     = 96
	DefaultRegistryURL       = "https://data.cityofnewyork.us/resource/2vyb-t2nz.json"
	DefaultLocationRangeFeet = 1000
	DefaultTimeout           = 30 * time.Second
)

// Config describes a landmark server.
type Config struct {
	ConfigFilePath string `json:"-"`

	Network    NetworkConfig    `json:"network"`
	Tiling     TilingConfig     `json:"tiling"`
	Classifier ClassifierConfig `json:"classifier"`
	Registry   RegistryConfig   `json:"registry"`
	Log        LogConfig        `json:"log"`
}

// Default returns a validated config with every default applied.
func Default() *Config {
	cfg := &Config{}
	// defaults always validate.
	utils.UncheckedError(cfg.Validate())
	return cfg
}

// Validate fills defaults and ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Network.Validate("network"); err != nil {
		return err
	}
	if err := c.Tiling.Validate("tiling"); err != nil {
		return err
	}
	if err := c.Classifier.Validate("classifier"); err != nil {
		return err
	}
	return c.Registry.Validate("registry")
}

// NetworkConfig describes the HTTP listener.
type NetworkConfig struct {
	// BindAddress is the address the server listens on.
	BindAddress string `json:"bind_address"`
	// MaxUploadBytes caps the size of an uploaded request body.
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

// Validate ensures all parts of the config are valid.
func (nc *NetworkConfig) Validate(path string) error {
	if nc.BindAddress == "" {
		nc.BindAddress = DefaultBindAddress
	}
	if _, _, err := net.SplitHostPort(nc.BindAddress); err != nil {
		return utils.NewConfigValidationError(path, errors.Wrap(err, "error validating bind_address"))
	}
	if nc.MaxUploadBytes < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_upload_bytes cannot be negative"))
	}
	if nc.MaxUploadBytes == 0 {
		nc.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return nil
}

// TilingConfig describes how a photo is cut into tiles.
type TilingConfig struct {
	// GridPix is the side of a square tile in pixels.
	GridPix    int               `json:"grid_pix"`
	TileFormat rimage.TileFormat `json:"tile_format"`
	// SkipRotation labels the grid in tiling orientation instead of rotating it clockwise first.
	SkipRotation bool `json:"skip_rotation"`
	// MaxPixels rejects photos with more pixels before they are decoded.
	MaxPixels int64 `json:"max_pixels"`
}

// Validate ensures all parts of the config are valid.
func (tc *TilingConfig) Validate(path string) error {
	if tc.GridPix < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("grid_pix must be positive, got %d", tc.GridPix))
	}
	if tc.GridPix == 0 {
		tc.GridPix = DefaultGridPix
	}
	if tc.MaxPixels < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_pixels must be positive, got %d", tc.MaxPixels))
	}
	if tc.MaxPixels == 0 {
		tc.MaxPixels = DefaultMaxPixels
	}
	format, err := rimage.ParseTileFormat(string(tc.TileFormat))
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	tc.TileFormat = format
	return nil
}

// ClassifierConfig describes the external image classifier.
type ClassifierConfig struct {
	// Type selects the classifier implementation, "watson" or "fake".
	Type         string `json:"type"`
	URL          string `json:"url"`
	APIKey       string `json:"api_key"`
	Version      string `json:"version"`
	ClassifierID string `json:"classifier_id"`
	Label        string `json:"label"`

	Workers       int     `json:"workers"`
	RatePerSecond float64 `json:"rate_per_second"`
	TimeoutStr    string  `json:"timeout"`

	// ThresholdSetting and FakeLuminanceSetting are the values written in the file, nil when absent.
	ThresholdSetting     *float64 `json:"threshold"`
	FakeLuminanceSetting *float64 `json:"fake_luminance"`

	// Threshold is the minimum score of a building label.
	Threshold float64 `json:"-"`
	// FakeLuminance is the mean luminance below which the fake classifier reports a building.
	FakeLuminance float64       `json:"-"`
	Timeout       time.Duration `json:"-"`
}

// Validate ensures all parts of the config are valid. An empty api_key is read from
// LANDMARK_CLASSIFIER_API_KEY. A threshold or fake_luminance present in the file, 0 included, wins
// over Threshold and FakeLuminance; when absent a zero Threshold or FakeLuminance gets its default.
func (cc *ClassifierConfig) Validate(path string) error {
	if cc.Type == "" {
		cc.Type = DefaultClassifierType
	}
	if cc.APIKey == "" {
		cc.APIKey = os.Getenv(rutils.ClassifierAPIKeyEnvVar)
	}
	if cc.Version == "" {
		cc.Version = DefaultClassifierVersion
	}
	if cc.ClassifierID == "" {
		cc.ClassifierID = DefaultClassifierID
	}
	cc.Threshold = settingOrDefault(cc.ThresholdSetting, cc.Threshold, DefaultThreshold)
	if cc.Threshold < 0 || cc.Threshold > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("threshold must be in [0, 1], got %v", cc.Threshold))
	}
	if cc.Label == "" {
		cc.Label = DefaultLabel
	}
	if cc.Workers < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("workers cannot be negative, got %d", cc.Workers))
	}
	if cc.Workers == 0 {
		cc.Workers = rutils.DefaultIOWorkers()
	}
	if cc.RatePerSecond < 0 {
		return utils.NewConfigValidationError(path, errors.New("rate_per_second cannot be negative"))
	}
	cc.FakeLuminance = settingOrDefault(cc.FakeLuminanceSetting, cc.FakeLuminance, DefaultFakeLuminance)
	if cc.FakeLuminance < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("fake_luminance cannot be negative, got %v", cc.FakeLuminance))
	}
	timeout, err := parseTimeout(cc.TimeoutStr)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	cc.Timeout = timeout
	return nil
}

// RegistryConfig describes the building registry.
type RegistryConfig struct {
	URL      string `json:"url"`
	AppToken string `json:"app_token"`
	// RangeFeet is the length of the search box in the facing direction.
	RangeFeet  float64 `json:"range_feet"`
	TimeoutStr string  `json:"timeout"`

	Timeout time.Duration `json:"-"`
}

// Validate ensures all parts of the config are valid. An empty app_token is read from
// LANDMARK_REGISTRY_APP_TOKEN.
func (rc *RegistryConfig) Validate(path string) error {
	if rc.URL == "" {
		rc.URL = DefaultRegistryURL
	}
	if rc.AppToken == "" {
		rc.AppToken = os.Getenv(rutils.RegistryAppTokenEnvVar)
	}
	if rc.RangeFeet < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("range_feet must be positive, got %v", rc.RangeFeet))
	}
	if rc.RangeFeet == 0 {
		rc.RangeFeet = DefaultLocationRangeFeet
	}
	timeout, err := parseTimeout(rc.TimeoutStr)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	rc.Timeout = timeout
	return nil
}

// LogConfig describes logging.
type LogConfig struct {
	Level logging.Level `json:"level"`
	// File, when set, also writes logs to a rotating file.
	File string `json:"file"`
}

func settingOrDefault(setting *float64, current, def float64) float64 {
	switch {
	case setting != nil:
		return *setting
	case current == 0:
		return def
	default:
		return current
	}
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return DefaultTimeout, nil
	}
	timeout, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(err, "error validating timeout")
	}
	if timeout < 0 {
		return 0, errors.Errorf("timeout cannot be negative, got %s", s)
	}
	return timeout, nil
}
