package firmware

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteBlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	// Pre-existing longer content must be truncated.
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xff}, 32), 0644); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x00, 0x01, 0x02, 0x03, 0x00}
	if err := WriteBlob(path, want); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("file content = % x, want % x", got, want)
	}
}

func TestWriteBlobMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", DefaultFileName)
	if err := WriteBlob(path, []byte{1}); err == nil {
		t.Errorf("WriteBlob() expected error for missing directory")
	}
}

func TestInstructionsLines(t *testing.T) {
	tests := []struct {
		name string
		in   Instructions
		want []string
	}{
		{
			name: "defaults",
			in:   Instructions{OutputPath: "aop-als-cal.bin"},
			want: []string{
				"sudo cp aop-als-cal.bin /lib/firmware/apple/aop-als-cal.bin",
				"sudo dracut --force --kver $(uname -r)",
				"# reboot",
			},
		},
		{
			name: "custom",
			in: Instructions{
				OutputPath:       "/tmp/cal.bin",
				FirmwarePath:     "/usr/lib/firmware/apple/aop-als-cal.bin",
				InitramfsCommand: "update-initramfs -u",
			},
			want: []string{
				"sudo cp /tmp/cal.bin /usr/lib/firmware/apple/aop-als-cal.bin",
				"sudo update-initramfs -u",
				"# reboot",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines() = %v, want %v", got, tt.want)
			}
		})
	}
}
