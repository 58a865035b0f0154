// Package calibration finds the ambient-light sensor calibration blob in an
// I/O registry dump. It contains:
//
//   - Matcher: which registry dicts count as the sensor node
//   - Record: the decoded CalibrationData of the selected node
//   - Candidate: a diagnostic view of every dict that looked relevant
//
// The sensor node is the first dict, in depth-first pre-order, that both
// identifies itself as the sensor and directly carries a CalibrationData
// value.
package calibration
