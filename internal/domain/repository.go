package domain

import (
	"context"
	"time"
)

// BlobStore is durable key-value storage for serialized blobs
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// CacheRepository holds short-lived values with a TTL, such as a session's
// last zipcode or a recent lookup result
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StockClient fetches raw, retailer-specific stock payloads
type StockClient interface {
	FetchStock(ctx context.Context, retailer Retailer, sku, zipcode string) ([]byte, error)
}

// ResultAdapter converts a raw retailer payload into canonical results
type ResultAdapter interface {
	Adapt(retailer Retailer, raw []byte) (*SearchResults, error)
}
