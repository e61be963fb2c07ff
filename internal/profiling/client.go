package profiling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"insight-profile/internal/domain"
	"insight-profile/internal/metrics"
	"insight-profile/internal/upstream"
)

// ProviderName identifica al proveedor en errores y metricas.
const ProviderName = "humantic"

// Provider es el proveedor externo de perfiles de personalidad.
type Provider interface {
	// CreateSubject registra el sujeto y devuelve el id asignado por el proveedor.
	CreateSubject(ctx context.Context, key string) (string, error)
	// FetchSubject lee el perfil procesado del sujeto.
	FetchSubject(ctx context.Context, externalUserID string) (domain.Payload, error)
}

// HTTPClient implementa Provider contra la API HTTP de Humantic.
type HTTPClient struct {
	baseURL string
	apiKey  string
	persona string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye el cliente. timeout aplica a cada llamada individual.
func NewHTTPClient(baseURL, apiKey, persona string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.humantic.ai/v1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		persona: persona,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) CreateSubject(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("id", key)
	params.Set("apikey", c.apiKey)

	body, err := c.get(ctx, "create", "/user-profile/create", params)
	if err != nil {
		return "", err
	}

	userID := extractUserID(body)
	if userID == "" {
		c.logger.Error("profiling create: no user id in response", zap.Strings("keys", body.Keys()))
		return "", upstream.Unavailable(ProviderName, fmt.Sprintf("could not extract user id from response (keys: %s)", strings.Join(body.Keys(), ",")), nil)
	}
	c.logger.Info("profiling subject created", zap.String("canonical_key", key), zap.String("external_user_id", userID))
	return userID, nil
}

func (c *HTTPClient) FetchSubject(ctx context.Context, externalUserID string) (domain.Payload, error) {
	params := url.Values{}
	params.Set("id", externalUserID)
	params.Set("apikey", c.apiKey)
	if c.persona != "" {
		params.Set("persona", c.persona)
	}

	body, err := c.get(ctx, "fetch", "/user-profile", params)
	if err != nil {
		return nil, err
	}

	profile, shape := selectProfile(body)
	c.logger.Info("profiling subject fetched",
		zap.String("external_user_id", externalUserID),
		zap.String("shape", shape),
		zap.Strings("keys", body.Keys()),
	)
	return profile, nil
}

// extractUserID prueba metadata.results primero (sujeto ya existente) y luego results (sujeto nuevo).
func extractUserID(body domain.Payload) string {
	for _, results := range []domain.Payload{body.Map("metadata", "results"), body.Map("results")} {
		if id := results.String("userid"); id != "" {
			return id
		}
		if id := results.String("username"); id != "" {
			return id
		}
	}
	return ""
}

// selectProfile elige el bloque de perfil segun la forma de la respuesta.
// Si ninguna forma trae personality_analysis se devuelve la respuesta completa.
func selectProfile(body domain.Payload) (domain.Payload, string) {
	if data := body.Map("data"); len(data) > 0 && hasPersonality(data) {
		return data, "data"
	}

	profile := body.Map("results")
	if hasPersonality(profile) {
		return profile, "results"
	}
	if pa := domain.AsPayload(body.Get("metadata", "personality_analysis")); len(pa) > 0 {
		merged := make(domain.Payload, len(profile)+1)
		for k, v := range profile {
			merged[k] = v
		}
		merged["personality_analysis"] = pa
		return merged, "results+metadata"
	}
	return body, "passthrough"
}

func hasPersonality(p domain.Payload) bool {
	return len(p.Map("personality_analysis")) > 0
}

func (c *HTTPClient) get(ctx context.Context, operation, path string, params url.Values) (domain.Payload, error) {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		uerr := upstream.FromTransport(ProviderName, err)
		metrics.ObserveUpstream(ProviderName, operation, string(uerr.Kind), started)
		c.logger.Error("profiling request failed", zap.String("operation", operation), zap.Error(err))
		return nil, uerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		uerr := upstream.FromTransport(ProviderName, err)
		metrics.ObserveUpstream(ProviderName, operation, string(uerr.Kind), started)
		return nil, uerr
	}

	if resp.StatusCode != http.StatusOK {
		msg := providerMessage(raw)
		metrics.ObserveUpstream(ProviderName, operation, metrics.OutcomeRejected, started)
		c.logger.Error("profiling api error",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, upstream.Rejected(ProviderName, resp.StatusCode, msg)
	}

	var body domain.Payload
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		if err == nil {
			err = errors.New("response is not a JSON object")
		}
		metrics.ObserveUpstream(ProviderName, operation, metrics.OutcomeUnavailable, started)
		return nil, upstream.Unavailable(ProviderName, "malformed response body", err)
	}

	metrics.ObserveUpstream(ProviderName, operation, metrics.OutcomeSuccess, started)
	return body, nil
}

// providerMessage extrae message o error del cuerpo de un error del proveedor.
func providerMessage(raw []byte) string {
	body := domain.DecodePayload(raw)
	if msg := body.String("message"); msg != "" {
		return msg
	}
	return body.String("error")
}
