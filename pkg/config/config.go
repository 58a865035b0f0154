package config

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/alscal/pkg/calibration"
)

type Config interface {
	OutputPath() string
	IdentityKeys() []string
	SensorPatterns() []string
	FirmwarePath() string
	InitramfsCommand() string

	SetOutputPath(string)
	SetIdentityKeys([]string)
	SetSensorPatterns([]string)
	SetFirmwarePath(string)
	SetInitramfsCommand(string)

	// Matcher builds the calibration matcher from the configured keys and patterns.
	Matcher() *calibration.Matcher
	// Validate reports every invalid setting at once.
	Validate() error
	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
