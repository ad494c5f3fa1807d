package secrets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenSourceOrder(t *testing.T) {
	keyring.MockInit()
	account := MondayKeyringAccount("42")

	env := map[string]string{}
	ts := TokenSource{
		Account:  account,
		Fallback: " from-config ",
		Getenv:   func(k string) string { return env[k] },
	}

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-config", tok)

	require.NoError(t, SetMondayToken(account, "from-keyring"))
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)

	env[TokenEnv] = "from-env"
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)

	delete(env, TokenEnv)
	require.NoError(t, DeleteMondayToken(account))
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-config", tok)
}

func TestTokenSourceEmpty(t *testing.T) {
	keyring.MockInit()
	ts := TokenSource{Getenv: func(string) string { return "" }}

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSetMondayTokenValidation(t *testing.T) {
	keyring.MockInit()

	assert.EqualError(t, SetMondayToken("", "x"), "keyring account name is empty")
	assert.EqualError(t, SetMondayToken("acct", "  "), "token is empty")
	assert.EqualError(t, DeleteMondayToken(" "), "keyring account name is empty")
	_, err := GetMondayToken("")
	assert.Error(t, err)
}

func TestMondayKeyringAccount(t *testing.T) {
	assert.Equal(t, "beacon:monday:board:8670560706", MondayKeyringAccount("8670560706"))
}

func TestCachedTokenSourceLooksUpKeyringOnce(t *testing.T) {
	lookups := 0
	ts := TokenSource{
		Account:  "acct",
		Fallback: "from-config",
		Getenv:   func(string) string { return "" },
		Lookup: func(string) (string, error) {
			lookups++
			return "", keyring.ErrNotFound
		},
	}

	token := ts.Cached(time.Hour)
	for i := 0; i < 5; i++ {
		tok, err := token()
		require.NoError(t, err)
		assert.Equal(t, "from-config", tok)
	}
	assert.Equal(t, 1, lookups)
}

func TestCachedTokenSourceRechecksAfterTTL(t *testing.T) {
	lookups := 0
	ts := TokenSource{
		Account: "acct",
		Getenv:  func(string) string { return "" },
		Lookup: func(string) (string, error) {
			lookups++
			return "from-keyring", nil
		},
	}

	token := ts.Cached(0)
	for i := 0; i < 3; i++ {
		tok, err := token()
		require.NoError(t, err)
		assert.Equal(t, "from-keyring", tok)
	}
	assert.Equal(t, 3, lookups)
}

func TestCachedTokenSourcePrefersEnv(t *testing.T) {
	ts := TokenSource{
		Account: "acct",
		Getenv:  func(k string) string { return map[string]string{TokenEnv: "from-env"}[k] },
		Lookup: func(string) (string, error) {
			t.Fatal("keyring consulted while env is set")
			return "", nil
		},
	}

	tok, err := ts.Cached(time.Hour)()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}
