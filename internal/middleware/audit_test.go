package middleware

import (
	"encoding/json"
	"testing"
)

func TestRedactAuditBodySubmit(t *testing.T) {
	body := []byte(`{"chainId":8453,"trade":{"type":"settler_metatransaction","signature":{"v":27,"r":"0x01","s":"0x02","signatureType":2}},"approval":{"signature":"0xdead"}}`)
	out := redactAuditBody("/api/gasless/submit", body)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	trade, ok := data["trade"].(map[string]interface{})
	if !ok {
		t.Fatalf("trade missing from output")
	}
	if trade["signature"] != "***" {
		t.Fatalf("trade signature not redacted")
	}
	if trade["type"] != "settler_metatransaction" {
		t.Fatalf("non-sensitive field changed")
	}
	if approval, ok := data["approval"].(map[string]interface{}); !ok || approval["signature"] != "***" {
		t.Fatalf("approval signature not redacted")
	}
}

func TestRedactAuditBodyNestedSplitSignature(t *testing.T) {
	body := []byte(`[{"v":28,"r":"0xaa","s":"0xbb"}]`)
	out := redactAuditBody("/v1/authorizations/eip3009", body)

	var data []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if data[0]["r"] != "***" || data[0]["s"] != "***" {
		t.Fatalf("r/s not redacted: %v", data[0])
	}
	if data[0]["v"] != float64(28) {
		t.Fatalf("v should be kept")
	}
}

func TestRedactAuditBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"ok":true}`)
	out := redactAuditBody("/health", body)
	if out != string(body) {
		t.Fatalf("unexpected redaction on non-sensitive path")
	}
}

func TestRedactAuditBodyInvalidJSON(t *testing.T) {
	body := []byte("not-json")
	out := redactAuditBody("/v1/swaps", body)
	if out != "[redacted]" {
		t.Fatalf("expected redacted placeholder for invalid json")
	}
}
