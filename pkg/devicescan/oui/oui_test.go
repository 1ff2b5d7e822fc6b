package oui

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/klauspost/oui"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"00:11:22:33:44:55", "00:11:22:33:44:55"},
		{"00-11-22-33-44-55", "00:11:22:33:44:55"},
		{"001122334455", "00:11:22:33:44:55"},
		{"0011.2233.4455", "00:11:22:33:44:55"},

		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff"},
		{"Aa:Bb:Cc:Dd:Ee:Ff", "aa:bb:cc:dd:ee:ff"},

		{"", ""},
		{"00:11:22:33:44", ""},       // Too short
		{"00:11:22:33:44:55:66", ""}, // Too long
		{"00:11:22:33:44:GG", ""},    // Invalid hex
		{"not-a-mac", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeMAC(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// fakeDB answers from a prefix table.
type fakeDB map[string]string

func (f fakeDB) Query(mac string) (*oui.Entry, error) {
	if mac == "ff:ff:ff:ff:ff:ff" {
		return nil, errors.New("broken")
	}
	if name, ok := f[mac[:8]]; ok {
		return &oui.Entry{Manufacturer: name, Country: "US"}, nil
	}
	return nil, oui.ErrNotFound
}

func TestDB_Lookup(t *testing.T) {
	db := &DB{q: fakeDB{"00:03:93": "Apple, Inc.", "b8:27:eb": "Raspberry Pi Foundation"}}

	tests := []struct {
		mac     string
		want    string
		wantErr bool
	}{
		{"00:03:93:12:34:56", "Apple, Inc.", false},
		{"B8-27-EB-00-00-01", "Raspberry Pi Foundation", false},
		{"52:54:00:00:00:01", "", false},
		{"invalid", "", true},
		{"ff:ff:ff:ff:ff:ff", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			v, err := db.Lookup(tt.mac)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			got := ""
			if v != nil {
				got = v.Manufacturer
			}
			if got != tt.want {
				t.Errorf("vendor = %q, want %q", got, tt.want)
			}
			if name := db.LookupName(tt.mac); name != tt.want {
				t.Errorf("LookupName = %q, want %q", name, tt.want)
			}
		})
	}
}

func TestDB_Nil(t *testing.T) {
	var db *DB
	if _, err := db.Lookup("00:03:93:00:00:00"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("err = %v, want ErrNoDatabase", err)
	}
	if name := db.LookupName("00:03:93:00:00:00"); name != "" {
		t.Errorf("LookupName on nil DB = %q", name)
	}
	if db.Path() != "" {
		t.Error("nil DB has a path")
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Open(\"\") err = %v", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDebugLogger(t *testing.T) {
	var logMessages []string
	originalLogger := DebugLogger

	DebugLogger = func(format string, args ...interface{}) {
		logMessages = append(logMessages, format)
	}
	defer func() { DebugLogger = originalLogger }()

	debugLog("test message %s", "arg")

	if len(logMessages) != 1 {
		t.Errorf("Expected 1 log message, got %d", len(logMessages))
	}
}

func BenchmarkNormalizeMAC(b *testing.B) {
	for _, mac := range []string{"00:11:22:33:44:55", "00-11-22-33-44-55", "001122334455"} {
		b.Run(mac, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = NormalizeMAC(mac)
			}
		})
	}
}
