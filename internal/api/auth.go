package api

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/ratelimit"
)

// ErrUnauthenticated is returned when a request carries no account identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// DefaultAccountHeader is set by the gateway after it authenticates the player.
const DefaultAccountHeader = "X-Account-ID"

// Authenticator resolves the calling player's account id.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// HeaderAuthenticator trusts an account id header set by an upstream
// gateway. It must only be exposed behind that gateway.
type HeaderAuthenticator struct {
	Header string
}

func (a HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := a.Header
	if header == "" {
		header = DefaultAccountHeader
	}
	account := strings.TrimSpace(r.Header.Get(header))
	if account == "" {
		return "", ErrUnauthenticated
	}
	return account, nil
}

const (
	DefaultClaimRate  = rate.Limit(0.5)
	DefaultClaimBurst = 5
)

// AccountLimiter rate-limits claims per account; each claim of an unknown
// hash costs a ledger RPC. A nil limiter allows everything.
type AccountLimiter struct {
	buckets *ratelimit.Keyed
}

func NewAccountLimiter(limit rate.Limit, burst int) *AccountLimiter {
	return newAccountLimiter(ratelimit.Config{Limit: limit, Burst: burst})
}

func newAccountLimiter(cfg ratelimit.Config) *AccountLimiter {
	return &AccountLimiter{buckets: ratelimit.NewKeyed(cfg)}
}

func (l *AccountLimiter) Allow(account string) bool {
	if l == nil {
		return true
	}
	return l.buckets.Allow(account)
}

func (l *AccountLimiter) Len() int { return l.buckets.Len() }
