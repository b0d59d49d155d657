package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Guard collapses concurrent identical generation requests into a single
// call of the supplied function. A key is released as soon as its call
// returns, so a later identical request starts a fresh call. T is the
// result delivered to every caller that joined the call.
type Guard[T any] struct {
	group singleflight.Group
}

// NewGuard creates an empty Guard.
func NewGuard[T any]() *Guard[T] {
	return &Guard[T]{}
}

// Key identifies a generation request for deduplication.
func Key(collectionID uuid.UUID, req Request) string {
	sum := sha256.Sum256([]byte(req.Text))
	return fmt.Sprintf("%s:%s:%d:%s:%s",
		collectionID, hex.EncodeToString(sum[:]), req.Count, req.Level, req.Language)
}

// Do runs fn unless a call with the same key is already in flight, in which
// case it waits for that call and returns its result. fn runs at most once
// per in-flight key, so side effects inside it happen once no matter how
// many callers join. shared reports whether the result was delivered to more
// than one caller. If ctx ends first, Do returns ctx.Err() while fn carries
// on for the other waiters.
func (g *Guard[T]) Do(
	ctx context.Context,
	key string,
	fn func() (T, error),
) (val T, shared bool, err error) {
	ch := g.group.DoChan(key, func() (any, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return val, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return val, res.Shared, res.Err
		}
		val, _ = res.Val.(T)
		return val, res.Shared, nil
	}
}
