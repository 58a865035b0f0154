package calibration

import (
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/alscal/pkg/ioreg"
)

// Find returns the calibration record of the first sensor node in root using
// DefaultMatcher. See Matcher.Find.
func Find(root *ioreg.Element) (*Record, error) {
	return DefaultMatcher().Find(root)
}

// Find walks root depth-first in document order and returns the record of the
// first dict that satisfies the matcher and directly carries a non-empty
// CalibrationData value. It returns nil, nil when no dict qualifies.
//
// A CalibrationData value that is not valid base64 aborts the walk, even if
// the dict holding it would not have qualified.
func (m *Matcher) Find(root *ioreg.Element) (*Record, error) {
	return m.find(root, nil)
}

func (m *Matcher) find(e *ioreg.Element, path []string) (*Record, error) {
	if e == nil {
		return nil, nil
	}

	if e.IsDict() {
		n := m.inspect(e)
		path = n.extendPath(path)
		if n.err != nil {
			return nil, pkgerrors.Wrapf(ErrMalformedData, "in %s: %v", formatPath(path), n.err)
		}
		if n.qualifies() {
			return &Record{
				Data:          n.payload,
				Path:          path,
				IdentityKey:   n.identityKey,
				IdentityValue: n.identityValue,
			}, nil
		}
		if n.identity {
			logrus.WithFields(logrus.Fields{
				"path":        formatPath(path),
				n.identityKey: n.identityValue,
			}).Debug("sensor dict has no usable CalibrationData")
		}
	}

	for _, child := range e.Children {
		rec, err := m.find(child, path)
		if err != nil || rec != nil {
			return rec, err
		}
	}

	return nil, nil
}

// Scan lists every dict under root that identifies as the sensor or carries a
// CalibrationData key, in document order. Unlike Find it does not stop at the
// first match or at malformed data.
func (m *Matcher) Scan(root *ioreg.Element) []Candidate {
	s := &scanner{m: m}
	s.walk(root, nil)
	return s.out
}

type scanner struct {
	m   *Matcher
	out []Candidate
	// done is set once Find would have returned, either with a record or an error.
	done bool
}

func (s *scanner) walk(e *ioreg.Element, path []string) {
	if e == nil {
		return
	}

	if e.IsDict() {
		n := s.m.inspect(e)
		path = n.extendPath(path)
		if n.identity || n.hasDataKey {
			c := Candidate{
				Path:               path,
				IdentityMatch:      n.identity,
				IdentityKey:        n.identityKey,
				IdentityValue:      n.identityValue,
				HasCalibrationData: len(n.payload) > 0,
				Size:               len(n.payload),
			}
			if n.err != nil {
				c.Error = n.err.Error()
				s.done = true
			} else if !s.done && n.qualifies() {
				c.Selected = true
				s.done = true
			}
			s.out = append(s.out, c)
		}
	}

	for _, child := range e.Children {
		s.walk(child, path)
	}
}

// node is what one pass over the key/value pairs of a dict found.
type node struct {
	name string

	identity      bool
	identityKey   string
	identityValue string

	hasDataKey bool
	payload    []byte
	err        error
}

func (n *node) qualifies() bool {
	return n.identity && len(n.payload) > 0
}

func (n *node) extendPath(path []string) []string {
	if n.name == "" {
		return path
	}
	return append(path[:len(path):len(path)], n.name)
}

// inspect scans the children of dict as key/value pairs. A <key> followed by
// any element consumes both; anything else (a stray value, or a trailing
// <key>) is skipped on its own.
func (m *Matcher) inspect(dict *ioreg.Element) node {
	var n node

	children := dict.Children
	for i := 0; i < len(children); {
		if !children[i].Is(ioreg.KindKey) || i+1 >= len(children) {
			i++
			continue
		}

		key, val := children[i].Text, children[i+1]
		i += 2

		if key == KeyEntryName && val.Is(ioreg.KindString) && n.name == "" {
			n.name = val.Text
		}

		if !n.identity && m.isIdentityKey(key) && val.Is(ioreg.KindString) && m.matches(val.Text) {
			n.identity = true
			n.identityKey = key
			n.identityValue = val.Text
		}

		if key == KeyCalibrationData && val.Is(ioreg.KindData) && val.Text != "" {
			n.hasDataKey = true
			data, err := decodeData(val.Text)
			if err != nil {
				n.payload = nil
				n.err = err
				return n
			}
			// A later CalibrationData in the same dict wins.
			n.payload = data
		}
	}

	return n
}

func (m *Matcher) isIdentityKey(key string) bool {
	for _, k := range m.IdentityKeys {
		if key == k {
			return true
		}
	}
	return false
}

func (m *Matcher) matches(value string) bool {
	if value == "" {
		return false
	}
	for _, p := range m.Patterns {
		if p != "" && strings.Contains(value, p) {
			return true
		}
	}
	return false
}

func formatPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, "/")
}
