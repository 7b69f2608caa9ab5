package core_test

import (
	"strings"
	"testing"

	"despensa/internal/core"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"eleven digits plain", "11999998888", "11999998888", false},
		{"ten digits plain", "1133334444", "1133334444", false},
		{"formatted input", "(11) 99999-8888", "11999998888", false},
		{"dashes and spaces", "11 9 9999-8888", "11999998888", false},
		{"too short", "999998888", "", true},
		{"too long", "5511999998888", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.NormalizePhone(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizePhone(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11999998888", "(11) 99999-8888"},
		{"1133334444", "(11) 3333-4444"},
		{"123", "123"},
	}
	for _, tt := range tests {
		if got := core.FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInternationalPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"eleven digits gets country code", "11999998888", "5511999998888"},
		{"ten digits gets country code", "1133334444", "551133334444"},
		{"already has country code", "5511999998888", "5511999998888"},
		{"trunk zero replaced", "01199999888", "551199999888"},
		{"formatted input", "(11) 99999-8888", "5511999998888"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.InternationalPhone(tt.in, core.DefaultCountryCode); got != tt.want {
				t.Errorf("InternationalPhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildWhatsAppLinks(t *testing.T) {
	links := core.BuildWhatsAppLinks([]string{"11999998888", "", "1133334444"}, "low stock: rice & beans", "")
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2 (empty phone skipped)", len(links))
	}
	if !strings.HasPrefix(links[0], "https://wa.me/5511999998888?text=") {
		t.Errorf("link[0] = %q, want wa.me link with 55 prefix", links[0])
	}
	if strings.Contains(links[0], " ") || strings.Contains(links[0], "&b") {
		t.Errorf("message must be URL-encoded: %q", links[0])
	}
	if !strings.Contains(links[0], "low+stock") {
		t.Errorf("encoded message missing from link: %q", links[0])
	}
}
