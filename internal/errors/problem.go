package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// RFC 7807 problem types served by the API.
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"

	TypeDatasetUnavailable = "/errors/dataset/unavailable"
	TypeDatasetStructural  = "/errors/dataset/malformed"
)

// ProblemDetails is an RFC 7807 problem document. Extension members are kept
// out of the struct so arbitrary keys (trace_id, error_code, retry_after)
// can ride along in the same JSON object.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails builds a problem document for the given status and type.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: map[string]interface{}{},
	}
}

// WithExtension attaches an extension member and returns pd for chaining.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// Render implements render.Renderer.
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON flattens the extension members into the problem object.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"type":   pd.Type,
		"title":  pd.Title,
		"status": pd.Status,
	}
	if pd.Detail != "" {
		out["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		out["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		out[k] = v
	}
	return json.Marshal(out)
}
