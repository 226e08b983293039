// Package dedupe remembers recently seen identifiers.
package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*ringDeduper)

// WithMaxSize sets how many IDs are remembered. Values <= 0 keep the default.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}
