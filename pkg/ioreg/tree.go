// Package ioreg reads I/O registry dumps produced by `ioreg -l -a`.
//
// A dump is an XML property list. It is parsed into a plain element tree
// instead of being decoded into Go values, because the dict encoding of a
// plist (alternating <key> and value siblings) has to be walked in document
// order, and dumps are not always well-formed in that respect.
package ioreg

import (
	"encoding/xml"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Element is a single XML element of the dump.
type Element struct {
	Kind Kind
	// Tag is the raw tag name. It only matters for KindUnknown.
	Tag string
	// Text is the direct character data of the element, unmodified.
	Text     string
	Children []*Element
}

// Is reports whether e is of the given kind.
func (e *Element) Is(kind Kind) bool {
	return e != nil && e.Kind == kind
}

// IsDict reports whether e is a <dict>.
func (e *Element) IsDict() bool {
	return e.Is(KindDict)
}

// Parse reads a whole XML document from r and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var (
		root  *Element
		stack []*Element
		text  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to parse registry dump")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{
				Kind: KindOf(t.Name.Local),
				Tag:  t.Name.Local,
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, pkgerrors.Errorf("unexpected second root element <%s>", t.Name.Local)
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			// The decoder already checks that start and end tags match.
			n := len(stack) - 1
			stack[n].Text = text[n].String()
			stack, text = stack[:n], text[:n]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}

	if root == nil {
		return nil, pkgerrors.New("registry dump contains no elements")
	}
	if len(stack) != 0 {
		return nil, pkgerrors.Errorf("registry dump ended inside <%s>", stack[len(stack)-1].Tag)
	}

	return root, nil
}

// ParseFile opens the dump at path (see Open) and parses it.
func ParseFile(path string) (*Element, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	root, err := Parse(rc)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read %s", path)
	}

	return root, nil
}
