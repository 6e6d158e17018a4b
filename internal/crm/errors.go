package crm

import "errors"

// ErrStoreRequired is returned when a store is not provided.
var ErrStoreRequired = errors.New("store required")
