package ioreg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"
)

const sampleDump = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0"><dict><key>IOClass</key><string>AppleSPUVD6286</string><key>CalibrationData</key><data>AQIDBA==</data><key>Enabled</key><true/><key>Ratio</key><real>0.5</real><key>IOWeird</key><weird>x</weird></dict></plist>`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := &Element{
		Kind: KindPlist,
		Tag:  "plist",
		Children: []*Element{
			{
				Kind: KindDict,
				Tag:  "dict",
				Children: []*Element{
					{Kind: KindKey, Tag: "key", Text: "IOClass"},
					{Kind: KindString, Tag: "string", Text: "AppleSPUVD6286"},
					{Kind: KindKey, Tag: "key", Text: "CalibrationData"},
					{Kind: KindData, Tag: "data", Text: "AQIDBA=="},
					{Kind: KindKey, Tag: "key", Text: "Enabled"},
					{Kind: KindTrue, Tag: "true"},
					{Kind: KindKey, Tag: "key", Text: "Ratio"},
					{Kind: KindReal, Tag: "real", Text: "0.5"},
					{Kind: KindKey, Tag: "key", Text: "IOWeird"},
					{Kind: KindUnknown, Tag: "weird", Text: "x"},
				},
			},
		},
	}

	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsText(t *testing.T) {
	root, err := Parse(strings.NewReader("<data>\n\tAQID\n\tBA==\n</data>"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Kind != KindData {
		t.Errorf("Kind = %v, want data", root.Kind)
	}
	if root.Text != "\n\tAQID\n\tBA==\n" {
		t.Errorf("Text = %q", root.Text)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty document", input: ""},
		{name: "whitespace only", input: "  \n"},
		{name: "mismatched tags", input: "<plist><dict></plist>"},
		{name: "truncated", input: "<plist><dict><key>IOClass</key>"},
		{name: "not xml", input: "IOClass = AppleSPUVD6286"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.input)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	for _, tag := range []string{"plist", "dict", "array", "key", "string", "data", "integer", "real", "date", "true", "false"} {
		k := KindOf(tag)
		if k == KindUnknown {
			t.Errorf("KindOf(%q) = unknown", tag)
		}
		if k.String() != tag {
			t.Errorf("KindOf(%q).String() = %q", tag, k.String())
		}
	}
	if KindOf("Dict") != KindUnknown {
		t.Errorf("tag matching must be case-sensitive")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "ioreg-full.xml")
	if err := os.WriteFile(plain, []byte(sampleDump), 0644); err != nil {
		t.Fatal(err)
	}

	compressed := filepath.Join(dir, "ioreg-full.xml.xz")
	f, err := os.Create(compressed)
	if err != nil {
		t.Fatal(err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(sampleDump)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	want, err := ParseFile(plain)
	if err != nil {
		t.Fatalf("ParseFile(plain) error = %v", err)
	}
	got, err := ParseFile(compressed)
	if err != nil {
		t.Fatalf("ParseFile(xz) error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("xz dump differs from plain dump (-plain +xz):\n%s", diff)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.xml")); err == nil {
		t.Errorf("ParseFile(missing) expected error")
	}
}
