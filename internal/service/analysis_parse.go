package service

import (
	"regexp"
	"strings"
)

var (
	openingFenceRe = regexp.MustCompile("(?is)^```[a-z]*\\s*")
	closingFenceRe = regexp.MustCompile("(?s)\\s*```$")
)

// stripCodeFence quita BOM y el bloque ```json ... ``` que suelen agregar los modelos.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))
	s = openingFenceRe.ReplaceAllString(s, "")
	s = closingFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstJSONObject devuelve el primer objeto {...} balanceado dentro de s, ignorando
// llaves dentro de strings. "" si no hay uno completo.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	if end := objectEnd(s[start:]); end > 0 {
		return s[start : start+end]
	}
	return ""
}

// objectEnd recibe un texto que empieza con '{' y devuelve el indice siguiente a su '}' de cierre.
func objectEnd(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}
