package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/alscal/pkg/calibration"
	"github.com/charlie0129/alscal/pkg/firmware"
	"github.com/charlie0129/alscal/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		OutputPath:       ptr.To(firmware.DefaultFileName),
		IdentityKeys:     calibration.DefaultMatcher().IdentityKeys,
		SensorPatterns:   calibration.DefaultMatcher().Patterns,
		FirmwarePath:     ptr.To(firmware.DefaultFirmwarePath),
		InitramfsCommand: ptr.To(firmware.DefaultInitramfsCommand),
	}
)

var _ Config = &File{}

// DefaultPath is the config file location under the XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "alscal", "config.json")
}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig.clone()
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

// RawFileConfig is the on-disk form. Unset fields fall back to defaults.
type RawFileConfig struct {
	OutputPath       *string  `json:"outputPath,omitempty"`
	IdentityKeys     []string `json:"identityKeys,omitempty"`
	SensorPatterns   []string `json:"sensorPatterns,omitempty"`
	FirmwarePath     *string  `json:"firmwarePath,omitempty"`
	InitramfsCommand *string  `json:"initramfsCommand,omitempty"`
}

func (r *RawFileConfig) clone() *RawFileConfig {
	c := *r
	c.IdentityKeys = append([]string(nil), r.IdentityKeys...)
	c.SensorPatterns = append([]string(nil), r.SensorPatterns...)
	return &c
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		OutputPath:       ptr.To(c.OutputPath()),
		IdentityKeys:     c.IdentityKeys(),
		SensorPatterns:   c.SensorPatterns(),
		FirmwarePath:     ptr.To(c.FirmwarePath()),
		InitramfsCommand: ptr.To(c.InitramfsCommand()),
	}

	return rawConfig, nil
}

func (f *File) OutputPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.OutputPath, *defaultFileConfig.OutputPath)
}

func (f *File) IdentityKeys() []string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := f.c.IdentityKeys
	if keys == nil {
		keys = defaultFileConfig.IdentityKeys
	}

	return append([]string(nil), keys...)
}

func (f *File) SensorPatterns() []string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	patterns := f.c.SensorPatterns
	if patterns == nil {
		patterns = defaultFileConfig.SensorPatterns
	}

	return append([]string(nil), patterns...)
}

func (f *File) FirmwarePath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.FirmwarePath, *defaultFileConfig.FirmwarePath)
}

func (f *File) InitramfsCommand() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.InitramfsCommand, *defaultFileConfig.InitramfsCommand)
}

func (f *File) SetOutputPath(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.OutputPath = &s
}

func (f *File) SetIdentityKeys(keys []string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.IdentityKeys = append([]string(nil), keys...)
}

func (f *File) SetSensorPatterns(patterns []string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SensorPatterns = append([]string(nil), patterns...)
}

func (f *File) SetFirmwarePath(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.FirmwarePath = &s
}

func (f *File) SetInitramfsCommand(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.InitramfsCommand = &s
}

func (f *File) Matcher() *calibration.Matcher {
	return &calibration.Matcher{
		IdentityKeys: f.IdentityKeys(),
		Patterns:     f.SensorPatterns(),
	}
}

func (f *File) Validate() error {
	var errs error

	if strings.TrimSpace(f.OutputPath()) == "" {
		errs = multierror.Append(errs, pkgerrors.New("outputPath must not be empty"))
	}
	if len(f.IdentityKeys()) == 0 {
		errs = multierror.Append(errs, pkgerrors.New("identityKeys must not be empty"))
	}
	for i, k := range f.IdentityKeys() {
		if k == "" {
			errs = multierror.Append(errs, fmt.Errorf("identityKeys[%d] must not be empty", i))
		}
	}
	if len(f.SensorPatterns()) == 0 {
		errs = multierror.Append(errs, pkgerrors.New("sensorPatterns must not be empty"))
	}
	for i, p := range f.SensorPatterns() {
		if p == "" {
			errs = multierror.Append(errs, fmt.Errorf("sensorPatterns[%d] must not be empty", i))
		}
	}
	if !filepath.IsAbs(f.FirmwarePath()) {
		errs = multierror.Append(errs, fmt.Errorf("firmwarePath %q must be absolute", f.FirmwarePath()))
	}

	if errs != nil {
		return pkgerrors.Wrapf(errs, "invalid config %s", f.filepath)
	}

	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	err := os.MkdirAll(filepath.Dir(f.filepath), 0755)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create config directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"outputPath":       f.OutputPath(),
		"identityKeys":     f.IdentityKeys(),
		"sensorPatterns":   f.SensorPatterns(),
		"firmwarePath":     f.FirmwarePath(),
		"initramfsCommand": f.InitramfsCommand(),
	}
}
