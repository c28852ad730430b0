package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	// Namespace prefixes every key written by this service.
	Namespace = "cache"
	// DefaultSignature is used for list keys when no filter is present.
	DefaultSignature = "default"
)

// Keys builds cache keys for one entity, e.g. "cache:patients:list:<sig>".
type Keys struct {
	entity string
}

// For returns the key builder for an entity name such as "clinical-records".
func For(entity string) Keys {
	return Keys{entity: entity}
}

// ListPrefix is the prefix shared by every list key of the entity.
func (k Keys) ListPrefix() string {
	return fmt.Sprintf("%s:%s:list", Namespace, k.entity)
}

// List returns the list key for a filter set.
func (k Keys) List(filters url.Values) string {
	return k.ListPrefix() + ":" + Signature(filters)
}

// Detail returns the detail key for one entity id.
func (k Keys) Detail(id interface{}) string {
	return fmt.Sprintf("%s:%s:detail:%v", Namespace, k.entity, id)
}

// ScopedPrefix is the prefix of list keys scoped to an owner, e.g.
// "cache:clinical-records:patient:<patientId>".
func (k Keys) ScopedPrefix(scope string, ownerID interface{}) string {
	return fmt.Sprintf("%s:%s:%s:%v", Namespace, k.entity, scope, ownerID)
}

// Scoped returns the scoped list key for a filter set.
func (k Keys) Scoped(scope string, ownerID interface{}, filters url.Values) string {
	return k.ScopedPrefix(scope, ownerID) + ":" + Signature(filters)
}

// Signature renders filters as sorted "key:value" pairs joined by "|".
// Only the first value of a parameter counts, matching how handlers read
// query params, and keys and values are query-escaped so ":", "|" and ","
// inside a value cannot forge another filter set. Blank values are dropped.
func Signature(filters url.Values) string {
	keys := make([]string, 0, len(filters))
	for key, values := range filters {
		if first(values) == "" {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return DefaultSignature
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, url.QueryEscape(key)+":"+url.QueryEscape(first(filters[key])))
	}
	return strings.Join(parts, "|")
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
