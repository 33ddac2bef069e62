package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/set-night/finmind/internal/domain"
)

// Bridge keeps single values in a Store. Values are JSON encoded, except the
// access token which is stored as the raw string the backend issued.
//
// Store failures never reach the caller: the value is kept in memory for the
// key until a later write or remove reaches the store again.
type Bridge struct {
	store  Store
	opaque map[string]bool

	mu     sync.Mutex
	shadow map[string]*string // nil entry: removed while the store was down
}

func NewBridge(store Store) *Bridge {
	return &Bridge{
		store:  store,
		opaque: map[string]bool{KeyAccessToken: true},
		shadow: make(map[string]*string),
	}
}

// Read decodes the value stored under key, or returns def when the key is
// missing or the stored value does not decode into T.
func Read[T any](ctx context.Context, b *Bridge, key string, def T) T {
	raw, ok := b.raw(ctx, key)
	if !ok {
		return def
	}
	var v T
	if b.opaque[key] {
		sp, isString := any(&v).(*string)
		if !isString {
			return def
		}
		*sp = raw
		return v
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Warn("stored value does not decode, using default", "key", key, "error", err)
		return def
	}
	return v
}

// ReadString returns the raw stored string, for opaque keys such as the access token.
func (b *Bridge) ReadString(ctx context.Context, key string) (string, bool) {
	return b.raw(ctx, key)
}

// AccessToken returns the stored bearer token, or "" when there is none.
func (b *Bridge) AccessToken(ctx context.Context) string {
	tok, _ := b.raw(ctx, KeyAccessToken)
	return tok
}

// Write stores value under key. A nil value removes the key instead.
func (b *Bridge) Write(ctx context.Context, key string, value any) error {
	if isNil(value) {
		b.Remove(ctx, key)
		return nil
	}

	var encoded string
	if b.opaque[key] {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("key %s stores strings only, got %T", key, value)
		}
		if s == "" {
			b.Remove(ctx, key)
			return nil
		}
		encoded = s
	} else {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		encoded = string(raw)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.Set(ctx, key, encoded); err != nil {
		slog.Warn("store unavailable, keeping value in memory", "key", key, "error", err)
		b.shadow[key] = &encoded
		return nil
	}
	delete(b.shadow, key)
	return nil
}

// Remove deletes key. It always succeeds from the caller's point of view.
func (b *Bridge) Remove(ctx context.Context, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.Remove(ctx, key); err != nil {
		slog.Warn("store unavailable, removing value in memory only", "key", key, "error", err)
		b.shadow[key] = nil
		return
	}
	delete(b.shadow, key)
}

func (b *Bridge) raw(ctx context.Context, key string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.shadow[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	raw, err := b.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("store unavailable, reading as empty", "key", key, "error", err)
		}
		return "", false
	}
	return raw, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
