package session

import (
	"container/list"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// styleKey identifies one resolution request. Filter and dataset generation are
// not part of the key: the whole cache is dropped when either changes.
type styleKey struct {
	id        string
	layer     domain.Layer
	startDate string
	endDate   string
	today     string
}

func keyOf(props domain.FeatureProperties, today string) styleKey {
	return styleKey{
		id:        props.ID,
		layer:     props.Layer,
		startDate: props.StartDate,
		endDate:   props.EndDate,
		today:     today,
	}
}

type cached struct {
	key   styleKey
	style domain.Style
}

// styleCache is a bounded LRU of resolved styles. Not safe for concurrent use;
// Session guards it with its own mutex.
type styleCache struct {
	limit int
	order *list.List // front is most recently used
	byKey map[styleKey]*list.Element
}

func newStyleCache(limit int) *styleCache {
	if limit < 1 {
		limit = 1
	}
	return &styleCache{
		limit: limit,
		order: list.New(),
		byKey: make(map[styleKey]*list.Element),
	}
}

func (c *styleCache) get(k styleKey) (domain.Style, bool) {
	el, ok := c.byKey[k]
	if !ok {
		return domain.Style{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).style, true
}

func (c *styleCache) put(k styleKey, s domain.Style) {
	if el, ok := c.byKey[k]; ok {
		el.Value.(*cached).style = s
		c.order.MoveToFront(el)
		return
	}
	c.byKey[k] = c.order.PushFront(&cached{key: k, style: s})
	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byKey, oldest.Value.(*cached).key)
	}
}

func (c *styleCache) len() int {
	return c.order.Len()
}

func (c *styleCache) reset() {
	c.order.Init()
	clear(c.byKey)
}
