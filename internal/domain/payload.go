package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload es un documento JSON sin esquema tal como lo devuelve un proveedor.
// Todos los accesos devuelven un valor por defecto en vez de fallar.
type Payload map[string]any

// AsPayload convierte v en Payload si es un objeto; en otro caso devuelve nil.
func AsPayload(v any) Payload {
	switch m := v.(type) {
	case Payload:
		return m
	case map[string]any:
		return Payload(m)
	}
	return nil
}

// Get recorre una ruta de claves anidadas. Devuelve nil si algun tramo falta o no es un objeto.
func (p Payload) Get(path ...string) any {
	var cur any = p
	for _, key := range path {
		m := AsPayload(cur)
		if m == nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// Has indica si la clave existe en el nivel superior, aunque su valor sea nulo.
func (p Payload) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p[key]
	return ok
}

// Map devuelve el objeto anidado en la ruta o un Payload vacio.
func (p Payload) Map(path ...string) Payload {
	if m := AsPayload(p.Get(path...)); m != nil {
		return m
	}
	return Payload{}
}

// String devuelve el texto en la ruta. Los numeros se formatean; otros tipos dan "".
func (p Payload) String(path ...string) string {
	return AsString(p.Get(path...))
}

// StringOr devuelve el texto en la ruta o def cuando esta vacio.
func (p Payload) StringOr(def string, path ...string) string {
	if s := p.String(path...); s != "" {
		return s
	}
	return def
}

// Float devuelve el numero en la ruta y si era interpretable como tal.
func (p Payload) Float(path ...string) (float64, bool) {
	return AsFloat(p.Get(path...))
}

// Slice devuelve la lista en la ruta o nil.
func (p Payload) Slice(path ...string) []any {
	if s, ok := p.Get(path...).([]any); ok {
		return s
	}
	return nil
}

// Objects devuelve los elementos objeto de la lista en la ruta, descartando el resto.
func (p Payload) Objects(path ...string) []Payload {
	items := p.Slice(path...)
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		if m := AsPayload(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Strings devuelve la lista de textos en la ruta, descartando elementos vacios.
func (p Payload) Strings(path ...string) []string {
	items := p.Slice(path...)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := AsString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Keys devuelve las claves del nivel superior.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// AsString normaliza escalares a texto.
func AsString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// AsFloat interpreta numeros y textos numericos.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// DecodePayload interpreta bytes JSON como objeto. Entradas vacias o no-objeto dan Payload vacio.
func DecodePayload(raw []byte) Payload {
	if len(raw) == 0 {
		return Payload{}
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return Payload{}
	}
	return p
}
