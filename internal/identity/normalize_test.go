package identity

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEquivalentInputs(t *testing.T) {
	inputs := []string{
		"https://www.linkedin.com/in/janedoe/",
		"linkedin.com/in/janedoe",
		"LINKEDIN.COM/in/janedoe?x=1",
		"  http://in.linkedin.com/in/janedoe/details/experience  ",
		"HTTPS://linkedin.com/janedoe",
	}
	for _, in := range inputs {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("normalize %q: unexpected error %v", in, err)
		}
		if got != "linkedin.com/in/janedoe" {
			t.Fatalf("normalize %q: got %q", in, got)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.linkedin.com/in/john-smith_99/",
		"linkedin.com/in/a",
		"www.linkedin.com/in/X-Y?utm_source=share",
	}
	for _, in := range inputs {
		first, err := Normalize(in)
		if err != nil {
			t.Fatalf("normalize %q: %v", in, err)
		}
		second, err := Normalize(first)
		if err != nil {
			t.Fatalf("normalize %q: %v", first, err)
		}
		if first != second {
			t.Fatalf("expected idempotent result, got %q then %q", first, second)
		}
	}
}

func TestNormalizeRejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		in     string
		reason string
	}{
		{"", "non-empty"},
		{"   ", "non-empty"},
		{"linkedin.com/", "profile identifier"},
		{"notlinkedin.com/in/janedoe", "not a LinkedIn URL"},
		{"linkedin.com:8080/in/janedoe", "not a LinkedIn URL"},
		{"linkedin.com/.hidden", "invalid LinkedIn profile path"},
		{"http://%zz", "invalid URL format"},
		{"linkedin.com/in", "invalid LinkedIn profile path"},
		{"linkedin.com/in/", "invalid LinkedIn profile path"},
		{"linkedin.com/in/in", "invalid LinkedIn profile path"},
		{"https://www.linkedin.com/in/jane.doe", "invalid LinkedIn profile path"},
		{"https://www.linkedin.com/in/john.smith-42", "invalid LinkedIn profile path"},
		{"linkedin.com/in/jane%20doe", "invalid LinkedIn profile path"},
		{"https://user:pw@linkedin.com/in/janedoe", "credentials"},
	}
	for _, tc := range cases {
		_, err := Normalize(tc.in)
		if !errors.Is(err, ErrInvalidIdentity) {
			t.Fatalf("normalize %q: expected ErrInvalidIdentity, got %v", tc.in, err)
		}
		if !strings.Contains(Reason(err), tc.reason) {
			t.Fatalf("normalize %q: expected reason containing %q, got %q", tc.in, tc.reason, Reason(err))
		}
	}
}

func TestSameSubject(t *testing.T) {
	if !SameSubject("https://www.linkedin.com/in/janedoe/", "linkedin.com/in/janedoe?trk=x") {
		t.Fatalf("expected same subject")
	}
	if SameSubject("linkedin.com/in/janedoe", "linkedin.com/in/johndoe") {
		t.Fatalf("expected different subjects")
	}
	if SameSubject("linkedin.com/in/jane.doe", "linkedin.com/in/john.smith-42") {
		t.Fatalf("unsupported handles must never collapse into one subject")
	}
	if SameSubject("", "") {
		t.Fatalf("invalid inputs are never the same subject")
	}
}
