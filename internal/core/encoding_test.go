package core

import (
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
		encoding string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
			encoding: "utf-8",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
			encoding: "utf-8",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
			encoding: "utf-8",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
			encoding: "utf-8",
		},
		{
			name:     "windows-1252 fallback",
			input:    []byte("caf\xE9 \x93quoted\x94"),
			expected: "café “quoted”",
			encoding: "windows-1252",
		},
		{
			name:     "utf-16 big endian",
			input:    []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'},
			expected: "hi",
			encoding: "utf-16be",
		},
		{
			name:     "decomposed accents are composed",
			input:    []byte("Jose\u0301"),
			expected: "Jos\u00e9",
			encoding: "utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := decodeText(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", string(got), tt.expected)
			}
			if enc != tt.encoding {
				t.Errorf("encoding = %q, want %q", enc, tt.encoding)
			}
		})
	}
}

func TestDecodeTextRejectsBinary(t *testing.T) {
	if _, _, err := decodeText([]byte("a,b\x00c")); err == nil {
		t.Error("expected error for NUL byte")
	}
}
