package hubspot

import (
	"fmt"
	"log"
	"sync"
	"time"

	"delivery_dispatch/pkg/hubspot"
)

// Object kinds the cache tracks.
const (
	ObjectContacts = "contacts"
	ObjectDeals    = "deals"
)

// PropertyFetcher is implemented by the HubSpot API client.
type PropertyFetcher interface {
	FetchProperties(objectType string) ([]hubspot.Property, error)
}

// SchemaStore is the shared cache backend (the redis client). It is
// optional: with a nil store the cache degrades to in-memory only.
type SchemaStore interface {
	SetJSON(key string, value interface{}, ttl time.Duration) error
	GetJSON(key string, dest interface{}) error
	Delete(key string) error
}

type memEntry struct {
	props     map[string]hubspot.Property
	fetchedAt time.Time
}

// SchemaCache holds the live HubSpot property definitions per object kind.
// Populated lazily on first use, refreshed inline when expired, and served
// stale when a refresh fails: HubSpot is treated as unreliable and a sync
// must not block on a schema fetch outage.
type SchemaCache struct {
	fetcher PropertyFetcher
	store   SchemaStore
	ttl     time.Duration

	mu  sync.RWMutex
	mem map[string]memEntry
}

func NewSchemaCache(fetcher PropertyFetcher, store SchemaStore, ttl time.Duration) *SchemaCache {
	return &SchemaCache{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		mem:     map[string]memEntry{},
	}
}

func schemaKey(objectType string) string {
	return "hubspot_schema:" + objectType
}

// Get returns the property schema for an object kind, indexed by property
// name.
func (c *SchemaCache) Get(objectType string) (map[string]hubspot.Property, error) {
	c.mu.RLock()
	entry, ok := c.mem[objectType]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.props, nil
	}

	// Another process may have refreshed the shared copy already.
	if c.store != nil {
		var props map[string]hubspot.Property
		if err := c.store.GetJSON(schemaKey(objectType), &props); err == nil && len(props) > 0 {
			c.remember(objectType, props)
			return props, nil
		}
	}

	list, err := c.fetcher.FetchProperties(objectType)
	if err != nil {
		// Stale fallback keeps syncs running through a HubSpot outage.
		if ok {
			log.Printf("Warning: schema refresh for %s failed, serving stale cache: %v", objectType, err)
			return entry.props, nil
		}
		return nil, fmt.Errorf("failed to fetch %s schema: %w", objectType, err)
	}

	props := make(map[string]hubspot.Property, len(list))
	for _, p := range list {
		props[p.Name] = p
	}

	c.remember(objectType, props)
	if c.store != nil {
		if err := c.store.SetJSON(schemaKey(objectType), props, c.ttl); err != nil {
			log.Printf("Warning: failed to store %s schema in redis: %v", objectType, err)
		}
	}

	return props, nil
}

func (c *SchemaCache) remember(objectType string, props map[string]hubspot.Property) {
	c.mu.Lock()
	c.mem[objectType] = memEntry{props: props, fetchedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops the cached schema for an object kind from both layers.
func (c *SchemaCache) Invalidate(objectType string) {
	c.mu.Lock()
	delete(c.mem, objectType)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(schemaKey(objectType)); err != nil {
			log.Printf("Warning: failed to delete %s schema from redis: %v", objectType, err)
		}
	}
}
