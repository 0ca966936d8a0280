package model

import (
	"time"
)

// AuditLog is one API request as seen by the gateway. Bodies are redacted
// before they are stored.
type AuditLog struct {
	ID        string `json:"id"`
	ClientKey string `json:"client_key,omitempty"` // masked gateway key
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	RequestBody  string `json:"request_body"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Handler supplied context, e.g. swap_id or trade_hash.
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
