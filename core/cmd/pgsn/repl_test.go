package main

import "testing"

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`{"type_name": "Integer", "is_named": true, "value": 1}`, false},
		{`{"type_name": "List",`, true},
		{`[1, 2`, true},
		{`{"a": }`, false},
		{`nonsense`, false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Fatalf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
