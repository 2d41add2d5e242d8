package extract_test

import (
	"testing"

	"github.com/verijob/verijob/internal/extract"
)

func TestWebsite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text, want string
	}{
		{"full url", "Apply at https://careers.acme.example/jobs/12 today", "https://careers.acme.example/jobs/12"},
		{"bare www gets scheme", "See www.acme.com for details", "https://www.acme.com"},
		{"none", "No links in this posting at all", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extract.Website(tt.text); got != tt.want {
				t.Errorf("Website(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	if got := extract.Email("Write to jobs@acme.example or call us"); got != "jobs@acme.example" {
		t.Errorf("Email = %q", got)
	}
	if got := extract.Email("no contact details here"); got != "" {
		t.Errorf("Email on plain text = %q, want empty", got)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text string
		wantEmpty  bool
	}{
		{"us dashed", "Call 555-123-4567 now", false},
		{"us parens", "Call (555) 123-4567 now", false},
		{"international", "Call +44 20 7946 0958 now", false},
		{"none", "no numbers here at all", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extract.Phone(tt.text)
			if tt.wantEmpty && got != "" {
				t.Errorf("Phone(%q) = %q, want empty", tt.text, got)
			}
			if !tt.wantEmpty && got == "" {
				t.Errorf("Phone(%q) found nothing", tt.text)
			}
		})
	}
}

func TestCompanyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text, want string
	}{
		{"join pattern", "Come join Acme as a senior engineer.", "Acme"},
		{"is hiring pattern", "Initech Corp is hiring remote developers", "Initech"},
		{"no match", "we are a great company to work for", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extract.CompanyName(tt.text); got != tt.want {
				t.Errorf("CompanyName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
