// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"math"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// Slice returns *options.FindOptions that skip the first skip documents and
// return at most limit. A non-positive limit returns every remaining document.
func Slice(skip, limit int64) *options.FindOptions {
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

// Skip returns the offset of a 1-based page. Offsets past math.MaxInt64
// saturate at math.MaxInt64.
func Skip(page, limit int64) int64 {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}
