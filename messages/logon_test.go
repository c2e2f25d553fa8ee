package messages

import (
	"strings"
	"testing"
)

func TestLogonStringMasksCredentials(t *testing.T) {
	msg := NewLogonMessage(map[string]interface{}{
		"scheme":      "basic",
		"principal":   "neo4j",
		"credentials": "hunter2",
		"realm":       "the-realm",
	})

	rendered := msg.String()
	if strings.Contains(rendered, "hunter2") {
		t.Fatalf("credentials leaked into rendering: %s", rendered)
	}
	if !strings.Contains(rendered, "credentials: <redacted>") {
		t.Fatalf("expected masked credentials, got: %s", rendered)
	}
	// Keys render in protocol order regardless of map iteration
	want := "LOGON {scheme: basic, principal: neo4j, credentials: <redacted>, realm: the-realm}"
	if rendered != want {
		t.Fatalf("expected %q, got %q", want, rendered)
	}
}

func TestLogonWireFieldsCarryRawCredentials(t *testing.T) {
	auth := map[string]interface{}{
		"scheme":      "basic",
		"principal":   "neo4j",
		"credentials": "hunter2",
	}
	msg := NewLogonMessage(auth)

	if msg.Signature() != LogonMessageSignature {
		t.Fatalf("unexpected signature: %x", msg.Signature())
	}
	fields := msg.AllFields()
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
	got := fields[0].(map[string]interface{})
	if got["credentials"] != "hunter2" {
		t.Fatalf("the wire must carry the raw credentials, got %v", got["credentials"])
	}
}
