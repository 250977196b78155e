package utils

import "testing"

func TestCalculateDataMD5(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "empty", data: nil, expected: "d41d8cd98f00b204e9800998ecf8427e"},
		{name: "text", data: []byte("hello"), expected: "5d41402abc4b2a76b9719d911017c592"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDataMD5(tt.data)
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}
