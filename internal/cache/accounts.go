// Package cache keeps short-lived copies of address→account links so the
// scan cycle does not query account_addresses for every transfer.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

// AccountLookup is the subset of the account store the resolver reads.
type AccountLookup interface {
	ResolveAccount(ctx context.Context, address string) (string, error)
	LinkAddress(ctx context.Context, link *model.AccountAddress) error
}

var _ AccountLookup = (store.AccountRepository)(nil)

type accountEntry struct {
	address   string
	account   string
	expiresAt time.Time
}

// AccountResolver is an LRU with per-entry TTL in front of an
// AccountLookup. Unlinked addresses are cached too, as "".
type AccountResolver struct {
	lookup   AccountLookup
	capacity int
	ttl      time.Duration
	nowFn    func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

func NewAccountResolver(lookup AccountLookup, capacity int, ttl time.Duration) *AccountResolver {
	if capacity <= 0 {
		capacity = 1
	}
	return &AccountResolver{
		lookup:   lookup,
		capacity: capacity,
		ttl:      ttl,
		nowFn:    time.Now,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Resolve returns the account linked to address, or "" when none is.
func (r *AccountResolver) Resolve(ctx context.Context, address string) (string, error) {
	address = model.NormalizeAddress(address)
	if account, ok := r.get(address); ok {
		metrics.AccountCacheHits.Inc()
		return account, nil
	}
	metrics.AccountCacheMisses.Inc()

	account, err := r.lookup.ResolveAccount(ctx, address)
	if err != nil {
		return "", fmt.Errorf("resolve account for %s: %w", address, err)
	}
	r.put(address, account)
	return account, nil
}

// Link stores the link and drops any cached entry for the address so the
// next scan sees it.
func (r *AccountResolver) Link(ctx context.Context, link *model.AccountAddress) error {
	link.Address = model.NormalizeAddress(link.Address)
	if err := r.lookup.LinkAddress(ctx, link); err != nil {
		return err
	}
	r.Invalidate(link.Address)
	return nil
}

func (r *AccountResolver) Invalidate(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elem, ok := r.items[model.NormalizeAddress(address)]; ok {
		r.removeElement(elem)
	}
}

// Len counts entries, including expired ones not yet evicted.
func (r *AccountResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

func (r *AccountResolver) get(address string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.items[address]
	if !ok {
		return "", false
	}
	e := elem.Value.(*accountEntry)
	if r.nowFn().After(e.expiresAt) {
		r.removeElement(elem)
		return "", false
	}
	r.order.MoveToFront(elem)
	return e.account, true
}

func (r *AccountResolver) put(address, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expires := r.nowFn().Add(r.ttl)
	if elem, ok := r.items[address]; ok {
		e := elem.Value.(*accountEntry)
		e.account = account
		e.expiresAt = expires
		r.order.MoveToFront(elem)
		return
	}

	if r.order.Len() >= r.capacity {
		if oldest := r.order.Back(); oldest != nil {
			r.removeElement(oldest)
		}
	}
	r.items[address] = r.order.PushFront(&accountEntry{address: address, account: account, expiresAt: expires})
}

func (r *AccountResolver) removeElement(elem *list.Element) {
	r.order.Remove(elem)
	delete(r.items, elem.Value.(*accountEntry).address)
}
