package domain

// CacheState es el resultado de evaluar el cache para una clave.
type CacheState string

const (
	CacheFreshHit CacheState = "fresh_hit"
	CacheStale    CacheState = "stale"
	CachePartial  CacheState = "partial"
	CacheMiss     CacheState = "miss"
	CacheForced   CacheState = "forced"
)

// NeedsProfileFetch indica si el estado obliga a llamar al proveedor de perfiles.
func (s CacheState) NeedsProfileFetch() bool {
	return s == CacheMiss || s == CacheStale || s == CacheForced
}

// ProfileStatus es la vista de existencia de una clave sin disparar el pipeline.
type ProfileStatus struct {
	Exists        bool
	NormalizedKey string
	Profile       *ProfileRecord
}
