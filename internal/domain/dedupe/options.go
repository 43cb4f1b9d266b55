package dedupe

// Option configures the deduper returned by NewInMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps how many event ids are remembered. Once full the oldest
// id is forgotten first; a non-positive size keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
