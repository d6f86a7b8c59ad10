package fetcher

import "context"

// IndexFetcher retrieves the global coin-price index (baseline 100).
type IndexFetcher interface {
	CurrentIndex(ctx context.Context) (int64, error)
}

// Static serves a fixed index value; it backs simulations and degraded
// operation when no live source is configured.
type Static struct {
	Value int64
}

// CurrentIndex returns the fixed value.
func (s *Static) CurrentIndex(context.Context) (int64, error) {
	return s.Value, nil
}

// Fallback tries the primary source first and falls back on error.
type Fallback struct {
	Primary   IndexFetcher
	Secondary IndexFetcher
}

// CurrentIndex reads from the primary, then the secondary.
func (f *Fallback) CurrentIndex(ctx context.Context) (int64, error) {
	value, err := f.Primary.CurrentIndex(ctx)
	if err == nil {
		return value, nil
	}
	return f.Secondary.CurrentIndex(ctx)
}

var (
	_ IndexFetcher = (*Static)(nil)
	_ IndexFetcher = (*Fallback)(nil)
)
