package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"go.uber.org/zap"
)

// UnitStatusSummary counts the units of a container by moderation status.
// It is computed on read and never stored.
type UnitStatusSummary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// ContainerView is a container hydrated with its units and associations
type ContainerView struct {
	Container     *model.Listing    `json:"container"`
	Units         []model.Listing   `json:"units"`
	UnitsByStatus UnitStatusSummary `json:"units_by_status"`
}

// ViewCache stores encoded container views. Implementations report a miss
// with any non-nil error from Get. Incr bumps an integer counter stored under
// key and returns the new value; Get on such a key returns its decimal form.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, error) { return nil, errCacheDisabled }
func (noCache) Set(context.Context, string, []byte) error   { return nil }
func (noCache) Delete(context.Context, ...string) error     { return nil }
func (noCache) Incr(context.Context, string) (int64, error) { return 0, nil }

var errCacheDisabled = errors.New("view cache disabled")

func containerViewKey(id uint) string {
	return fmt.Sprintf("container:view:%d", id)
}

func containerGenKey(id uint) string {
	return fmt.Sprintf("container:gen:%d", id)
}

// views wraps a ViewCache with the encoding of ContainerView. Cache failures
// are logged and never fail the operation.
//
// Every container has a generation counter that invalidate bumps before it
// drops the view. A reader samples the generation before loading from the
// database and, after storing its view, drops it again if the generation moved
// in between, so a view built from rows older than a committed write never
// outlives that write's invalidation.
type views struct {
	cache ViewCache
}

func newViews(cache ViewCache) views {
	if cache == nil {
		cache = noCache{}
	}
	return views{cache: cache}
}

func (v views) get(ctx context.Context, id uint) (*ContainerView, bool) {
	raw, err := v.cache.Get(ctx, containerViewKey(id))
	if err != nil {
		return nil, false
	}
	var view ContainerView
	if err := json.Unmarshal(raw, &view); err != nil {
		logger.FromContext(ctx).Warn("Discarding undecodable container view", zap.Uint("container_id", id), zap.Error(err))
		return nil, false
	}
	return &view, true
}

// generation returns the current generation of a container. A missing
// counter reads as zero.
func (v views) generation(ctx context.Context, id uint) (int64, error) {
	raw, err := v.cache.Get(ctx, containerGenKey(id))
	if err != nil {
		return 0, nil
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// put stores view if no invalidation of its container happened since gen was sampled
func (v views) put(ctx context.Context, view *ContainerView, gen int64) {
	id := view.Container.ID
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if current, err := v.generation(ctx, id); err != nil || current != gen {
		return
	}
	key := containerViewKey(id)
	if err := v.cache.Set(ctx, key, raw); err != nil {
		logger.FromContext(ctx).Warn("Failed to cache container view", zap.Uint("container_id", id), zap.Error(err))
		return
	}

	if current, err := v.generation(ctx, id); err == nil && current == gen {
		return
	}
	if err := v.cache.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("Failed to drop outdated container view", zap.Uint("container_id", id), zap.Error(err))
	}
}

func (v views) invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := v.cache.Incr(ctx, containerGenKey(id)); err != nil {
			logger.FromContext(ctx).Warn("Failed to bump container generation", zap.Uint("container_id", id), zap.Error(err))
		}
		keys = append(keys, containerViewKey(id))
	}
	if err := v.cache.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate container views", zap.Uints("container_ids", ids), zap.Error(err))
	}
}
