package dedupe

// Option configures NewInMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps how many idempotency keys are remembered. Once full, the
// key recorded longest ago is forgotten. A size of zero or less never forgets.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
