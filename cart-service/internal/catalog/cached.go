package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/kanap/cart-service/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// upstreamTimeout bounds a shared upstream lookup, which no single caller
// can cancel.
const upstreamTimeout = 10 * time.Second

// Cached puts a product cache in front of a Gateway. Concurrent misses for
// the same id share one upstream call.
type Cached struct {
	upstream Gateway
	cache    ProductCache
	log      *zap.Logger
	sfg      singleflight.Group
}

func NewCached(upstream Gateway, cache ProductCache, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{
		upstream: upstream,
		cache:    cache,
		log:      log,
	}
}

func (c *Cached) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := c.cache.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("product cache get failed", zap.String("product_id", id), zap.Error(err))
	}

	ch := c.sfg.DoChan(id, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upstreamTimeout)
		defer cancel()

		p, err := c.upstream.FetchProduct(fetchCtx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := c.cache.Set(setCtx, p); err != nil {
				c.log.Warn("product cache set failed", zap.String("product_id", id), zap.Error(err))
			}
		}()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Product), nil
	}
}

// ListProducts is passed through when the upstream can list.
func (c *Cached) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	l, ok := c.upstream.(Lister)
	if !ok {
		return nil, errors.New("upstream catalog cannot list products")
	}
	return l.ListProducts(ctx)
}
