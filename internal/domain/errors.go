package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidZipcode is returned when a zipcode is not five digits
	ErrInvalidZipcode = errors.New("invalid zipcode")

	// ErrUnknownRetailer is returned when no adapter is registered for a retailer
	ErrUnknownRetailer = errors.New("unknown retailer")

	// ErrAdapter is returned when a retailer payload is missing required structure
	ErrAdapter = errors.New("failed to adapt retailer payload")

	// ErrStockAPIFailure is returned when the stock API request fails
	ErrStockAPIFailure = errors.New("stock API request failed")

	// ErrStockNotFound is returned when the stock API has nothing for a SKU
	ErrStockNotFound = errors.New("no stock data found for sku")

	// ErrBlobNotFound is returned when durable storage has no blob under a key
	ErrBlobNotFound = errors.New("blob not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPersistence is returned when the recent-search store cannot be read or written
	ErrPersistence = errors.New("failed to persist searches")

	// ErrUnsupportedAlgorithm is returned for an unknown digest algorithm name
	ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")
)

// AdapterError describes which part of a retailer payload could not be adapted.
// It matches ErrAdapter with errors.Is.
type AdapterError struct {
	Retailer Retailer
	Field    string
	Err      error
}

// NewAdapterError wraps err as a fatal adaptation failure for one field.
func NewAdapterError(retailer Retailer, field string, err error) error {
	return &AdapterError{Retailer: retailer, Field: field, Err: err}
}

func (e *AdapterError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s adapter: %s: %v", e.Retailer, e.Field, ErrAdapter)
	}
	return fmt.Sprintf("%s adapter: %s: %v", e.Retailer, e.Field, e.Err)
}

func (e *AdapterError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAdapter}
	}
	return []error{ErrAdapter, e.Err}
}
