package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "beacon-dashboard"

	TokenEnv = "MONDAY_API_TOKEN"
)

func GetMondayToken(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) == "" {
		return "", errors.New("keyring account name is empty")
	}
	tok, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

func SetMondayToken(keyringAccount string, token string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, strings.TrimSpace(token))
}

func DeleteMondayToken(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func MondayKeyringAccount(boardID string) string {
	return fmt.Sprintf("beacon:monday:board:%s", boardID)
}

// TokenSource resolves the Monday API token from the environment, then the
// OS keyring, then the config file value.
type TokenSource struct {
	Account  string
	Fallback string
	Getenv   func(string) string
	Lookup   func(account string) (string, error)
}

func (ts TokenSource) Token() (string, error) {
	if v := ts.env(); v != "" {
		return v, nil
	}
	if tok := ts.keyring(); tok != "" {
		return tok, nil
	}
	return strings.TrimSpace(ts.Fallback), nil
}

func (ts TokenSource) env() string {
	getenv := ts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(TokenEnv))
}

func (ts TokenSource) keyring() string {
	if ts.Account == "" {
		return ""
	}
	lookup := ts.Lookup
	if lookup == nil {
		lookup = GetMondayToken
	}
	tok, err := lookup(ts.Account)
	if err != nil {
		return ""
	}
	return tok
}

// Cached returns a token func that consults the keyring at most once per ttl.
// Hits and misses are both remembered; the environment is read on every call.
func (ts TokenSource) Cached(ttl time.Duration) func() (string, error) {
	var (
		mu  sync.Mutex
		tok string
		at  time.Time
	)
	return func() (string, error) {
		if v := ts.env(); v != "" {
			return v, nil
		}
		mu.Lock()
		if at.IsZero() || time.Since(at) >= ttl {
			tok = ts.keyring()
			at = time.Now()
		}
		cur := tok
		mu.Unlock()
		if cur != "" {
			return cur, nil
		}
		return strings.TrimSpace(ts.Fallback), nil
	}
}
