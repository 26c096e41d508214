package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets how many assessments the memory store keeps before
// overwriting the oldest.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}
