package calibration

import "errors"

// Registry keys used to recognize the sensor node.
const (
	KeyEntryName       = "IORegistryEntryName"
	KeyClass           = "IOClass"
	KeyObjectClass     = "IOObjectClass"
	KeyCalibrationData = "CalibrationData"
)

var (
	// ErrNotFound is returned by callers when no dict in the dump qualifies.
	ErrNotFound = errors.New("no ALS CalibrationData found")

	// ErrMalformedData is returned when a CalibrationData value is not valid base64.
	ErrMalformedData = errors.New("malformed CalibrationData")
)

// Matcher decides which dicts identify the ambient-light sensor.
type Matcher struct {
	// IdentityKeys are the keys whose string value is checked against Patterns.
	IdentityKeys []string `json:"identityKeys"`
	// Patterns are case-sensitive substrings. One match is enough.
	Patterns []string `json:"patterns"`
}

// DefaultMatcher matches the VD6286 sensor behind the SPU, as found on Apple
// Silicon laptops.
func DefaultMatcher() *Matcher {
	return &Matcher{
		IdentityKeys: []string{KeyEntryName, KeyClass, KeyObjectClass},
		Patterns:     []string{"VD6286", "SPUALS"},
	}
}

// Record is the calibration blob of the selected sensor node.
type Record struct {
	Data []byte
	// Path holds the IORegistryEntryName values from the root down to the
	// sensor node. Dicts without a name are skipped.
	Path []string
	// IdentityKey and IdentityValue are the first pair that identified the node.
	IdentityKey   string
	IdentityValue string
}

// Candidate describes a dict that identifies as the sensor, carries a
// CalibrationData key, or both.
type Candidate struct {
	Path          []string `json:"path" plist:"path"`
	IdentityMatch bool     `json:"identityMatch" plist:"identityMatch"`
	IdentityKey   string   `json:"identityKey,omitempty" plist:"identityKey,omitempty"`
	IdentityValue string   `json:"identityValue,omitempty" plist:"identityValue,omitempty"`
	// HasCalibrationData is true when the dict has a non-empty CalibrationData value.
	HasCalibrationData bool `json:"hasCalibrationData" plist:"hasCalibrationData"`
	Size               int  `json:"size" plist:"size"`
	// Error is set when the CalibrationData value could not be decoded.
	Error string `json:"error,omitempty" plist:"error,omitempty"`
	// Selected is true for the dict Find would return.
	Selected bool `json:"selected" plist:"selected"`
}
