package messages

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// LogonMessageSignature is the signature byte for the LOGON message
	LogonMessageSignature = 0x6A
)

// credentialsKey is masked whenever a LOGON message is rendered for
// diagnostics. The raw value still goes out on the wire.
const credentialsKey = "credentials"

// LogonMessage Represents a LOGON message
type LogonMessage struct {
	auth map[string]interface{}
}

// NewLogonMessage Gets a new LogonMessage struct
func NewLogonMessage(auth map[string]interface{}) LogonMessage {
	return LogonMessage{
		auth: auth,
	}
}

// Signature gets the signature byte for the struct
func (i LogonMessage) Signature() byte {
	return LogonMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i LogonMessage) AllFields() []interface{} {
	return []interface{}{i.auth}
}

// String renders the message with the credentials masked. Every log
// and trace path must go through here, never through the raw fields.
func (i LogonMessage) String() string {
	keys := make([]string, 0, len(i.auth))
	for k := range i.auth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return logonKeyRank(keys[a]) < logonKeyRank(keys[b])
	})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == credentialsKey {
			parts = append(parts, fmt.Sprintf("%s: <redacted>", k))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, i.auth[k]))
	}
	return "LOGON {" + strings.Join(parts, ", ") + "}"
}

// logonKeyRank keeps the diagnostic rendering in the protocol's
// documented key order: scheme, principal, credentials, then the rest.
func logonKeyRank(key string) int {
	switch key {
	case "scheme":
		return 0
	case "principal":
		return 1
	case credentialsKey:
		return 2
	case "realm":
		return 3
	default:
		return 4
	}
}
