package bolt

import (
	"fmt"
	"strings"
)

// AuthToken holds the pieces of an authentication exchange. The
// credentials value is a secret: it is written to the wire, but it
// must never show up in a log line or a printed representation, which
// is why String masks it.
type AuthToken struct {
	Scheme      string
	Principal   string
	Credentials string
	Realm       string
	Parameters  map[string]interface{}
}

// BasicAuth gets an AuthToken for the basic username/password scheme
func BasicAuth(principal, credentials string) AuthToken {
	return AuthToken{
		Scheme:      "basic",
		Principal:   principal,
		Credentials: credentials,
	}
}

// BasicAuthWithRealm gets a basic AuthToken scoped to a realm
func BasicAuthWithRealm(principal, credentials, realm string) AuthToken {
	return AuthToken{
		Scheme:      "basic",
		Principal:   principal,
		Credentials: credentials,
		Realm:       realm,
	}
}

// KerberosAuth gets an AuthToken carrying a base64 encoded kerberos ticket
func KerberosAuth(ticket string) AuthToken {
	return AuthToken{
		Scheme:      "kerberos",
		Credentials: ticket,
	}
}

// BearerAuth gets an AuthToken carrying a token produced by an SSO provider
func BearerAuth(token string) AuthToken {
	return AuthToken{
		Scheme:      "bearer",
		Credentials: token,
	}
}

// CustomAuth gets an AuthToken for server-side custom authentication plugins
func CustomAuth(scheme, principal, credentials, realm string, parameters map[string]interface{}) AuthToken {
	return AuthToken{
		Scheme:      scheme,
		Principal:   principal,
		Credentials: credentials,
		Realm:       realm,
		Parameters:  parameters,
	}
}

// wireMap builds the single LOGON field. Keys: scheme, principal and
// credentials always, realm and parameters only when set.
func (t AuthToken) wireMap() map[string]interface{} {
	m := map[string]interface{}{
		"scheme":      t.Scheme,
		"principal":   t.Principal,
		"credentials": t.Credentials,
	}
	if t.Realm != "" {
		m["realm"] = t.Realm
	}
	if len(t.Parameters) > 0 {
		m["parameters"] = t.Parameters
	}
	return m
}

// String renders the token for diagnostics with the credentials masked.
func (t AuthToken) String() string {
	parts := []string{
		fmt.Sprintf("scheme: %s", t.Scheme),
		fmt.Sprintf("principal: %s", t.Principal),
		"credentials: <redacted>",
	}
	if t.Realm != "" {
		parts = append(parts, fmt.Sprintf("realm: %s", t.Realm))
	}
	if len(t.Parameters) > 0 {
		parts = append(parts, fmt.Sprintf("parameters: %v", t.Parameters))
	}
	return "AuthToken {" + strings.Join(parts, ", ") + "}"
}

// sameToken compares tokens by their scalar fields. Parameters are
// intentionally left out; custom schemes rotating only parameters
// should rotate credentials too.
func sameToken(a, b AuthToken) bool {
	return a.Scheme == b.Scheme &&
		a.Principal == b.Principal &&
		a.Credentials == b.Credentials &&
		a.Realm == b.Realm
}

// AuthManager owns the re-authentication policy for a connection. The
// connection only ever reads the current token at handshake time; it
// never synchronizes with token rotation beyond storing the latest
// manager reference. Implementations must be safe for use from the
// policy side while connections read from them.
type AuthManager interface {
	// GetAuthToken returns the current authentication information.
	GetAuthToken() (AuthToken, error)

	// OnAuthExpired handles the server indicating that the given
	// authentication information is no longer valid.
	OnAuthExpired(token AuthToken)
}

// staticAuthManager hands out a fixed token and ignores expiry.
type staticAuthManager struct {
	token AuthToken
}

// NewStaticAuthManager gets an AuthManager that always returns the
// same token.
func NewStaticAuthManager(token AuthToken) AuthManager {
	return &staticAuthManager{token: token}
}

func (s *staticAuthManager) GetAuthToken() (AuthToken, error) {
	return s.token, nil
}

func (s *staticAuthManager) OnAuthExpired(AuthToken) {}
