package bolt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireMapAlwaysCarriesCoreKeys(t *testing.T) {
	m := BasicAuth("neo4j", "pw").wireMap()
	assert.Equal(t, map[string]interface{}{
		"scheme":      "basic",
		"principal":   "neo4j",
		"credentials": "pw",
	}, m)
}

func TestWireMapIncludesRealmOnlyWhenSet(t *testing.T) {
	m := BasicAuthWithRealm("neo4j", "pw", "the-realm").wireMap()
	assert.Equal(t, "the-realm", m["realm"])

	m = BasicAuth("neo4j", "pw").wireMap()
	assert.NotContains(t, m, "realm")
}

func TestWireMapIncludesParametersOnlyWhenSet(t *testing.T) {
	params := map[string]interface{}{"region": "eu"}
	m := CustomAuth("plugin", "who", "pw", "", params).wireMap()
	assert.Equal(t, params, m["parameters"])
	assert.NotContains(t, m, "realm")

	m = CustomAuth("plugin", "who", "pw", "", nil).wireMap()
	assert.NotContains(t, m, "parameters")
}

func TestSchemeHelpers(t *testing.T) {
	assert.Equal(t, "kerberos", KerberosAuth("ticket").Scheme)
	assert.Equal(t, "bearer", BearerAuth("sso-token").Scheme)
	assert.Equal(t, "ticket", KerberosAuth("ticket").Credentials)
}

func TestSameToken(t *testing.T) {
	a := BasicAuth("neo4j", "pw")
	assert.True(t, sameToken(a, BasicAuth("neo4j", "pw")))
	assert.False(t, sameToken(a, BasicAuth("neo4j", "other")))
	assert.False(t, sameToken(a, BasicAuthWithRealm("neo4j", "pw", "r")))
}

func TestStaticAuthManager(t *testing.T) {
	token := BasicAuth("neo4j", "pw")
	manager := NewStaticAuthManager(token)

	got, err := manager.GetAuthToken()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	// Expiry is a no-op for static credentials
	manager.OnAuthExpired(token)
	got, err = manager.GetAuthToken()
	require.NoError(t, err)
	assert.Equal(t, token, got)
}
