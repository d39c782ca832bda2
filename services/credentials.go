package services

import (
	"errors"
	"math/rand"
	"strings"
)

// ErrNoCredentials means the pool was configured empty. The process still
// starts, every model call answers with a service-unavailable error instead.
var ErrNoCredentials = errors.New("no gemini api credentials configured")

// CredentialPool holds the API keys loaded once at startup. Selection is
// uniformly random per external call to spread volume across quota buckets,
// the pool itself is never mutated after construction.
type CredentialPool struct {
	keys []string
}

// NewCredentialPool splits the raw GEMINI_API_KEYS value on any whitespace,
// so both space-separated and newline-separated secrets work.
func NewCredentialPool(raw string) *CredentialPool {
	return &CredentialPool{keys: strings.Fields(raw)}
}

func (p *CredentialPool) Size() int {
	return len(p.keys)
}

func (p *CredentialPool) Select() (string, error) {
	if len(p.keys) == 0 {
		return "", ErrNoCredentials
	}
	return p.keys[rand.Intn(len(p.keys))], nil
}
