package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"insight-profile/internal/service"
)

func TestNormalizeCommand(t *testing.T) {
	cmd := normalizeCMD()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"https://www.linkedin.com/in/janedoe/", "example.com/in/x"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for the invalid url")
	}
	if !strings.Contains(out.String(), "\tlinkedin.com/in/janedoe") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !strings.Contains(errOut.String(), "not a LinkedIn URL") {
		t.Fatalf("unexpected error output %q", errOut.String())
	}
}

func TestTokenCommand(t *testing.T) {
	cmd := tokenCMD()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--secret", "s3cret", "--subject", "ops", "--ttl", "5m"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := service.NewAdminTokenService("s3cret", "insight-profile").Parse(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "ops" || claims.ExpiresAt.Sub(claims.IssuedAt.Time) != 5*time.Minute {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenCommandWithoutSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")
	cmd := tokenCMD()
	cmd.SetArgs([]string{"--secret", ""})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error without secret")
	}
}
