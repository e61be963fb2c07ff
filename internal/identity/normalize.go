package identity

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidIdentity se devuelve cuando la URL no identifica un perfil valido.
var ErrInvalidIdentity = errors.New("invalid identity")

// CanonicalHost es el host fijo de toda clave canonica.
const CanonicalHost = "linkedin.com"

var acceptedHosts = map[string]struct{}{
	"linkedin.com":     {},
	"www.linkedin.com": {},
	"in.linkedin.com":  {},
}

// handleRe exige que el handle ocupe todo el segmento; lo que sigue a la barra se descarta.
var handleRe = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:/.*)?$`)

const profilePrefix = "in"

// Normalize convierte una URL de perfil en su clave canonica "linkedin.com/in/<handle>".
// Esquema, prefijo www., barra final y query string no afectan el resultado.
func Normalize(raw string) (string, error) {
	handle, err := Handle(raw)
	if err != nil {
		return "", err
	}
	return CanonicalHost + "/in/" + handle, nil
}

// Handle extrae el identificador del sujeto desde la URL.
func Handle(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid("URL must be a non-empty string")
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", invalid(fmt.Sprintf("invalid URL format: %s", raw))
	}

	if u.User != nil {
		return "", invalid("LinkedIn URL must not carry credentials")
	}

	host := strings.ToLower(u.Host)
	if _, ok := acceptedHosts[host]; !ok {
		return "", invalid(fmt.Sprintf("not a LinkedIn URL: %s", host))
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", invalid("LinkedIn profile URL must include profile identifier")
	}

	rest := path
	if r, ok := strings.CutPrefix(path, profilePrefix+"/"); ok {
		rest = r
	}
	m := handleRe.FindStringSubmatch(rest)
	if len(m) < 2 || m[1] == profilePrefix {
		return "", invalid(fmt.Sprintf("invalid LinkedIn profile path: %s", path))
	}
	return m[1], nil
}

// SameSubject indica si dos URLs apuntan al mismo perfil.
func SameSubject(a, b string) bool {
	ka, err := Normalize(a)
	if err != nil {
		return false
	}
	kb, err := Normalize(b)
	if err != nil {
		return false
	}
	return ka == kb
}

// Reason devuelve el motivo legible de un error de identidad, sin el prefijo del sentinel.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), ErrInvalidIdentity.Error()+": ")
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidIdentity, reason)
}
