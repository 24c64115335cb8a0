package epub

import (
	"compress/flate"

	"go.uber.org/zap"
)

type options struct {
	log   *zap.Logger
	level int
}

// Option configures how a publication is parsed and exported.
type Option func(*options)

// WithLogger routes diagnostics to log. The default discards them.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCompressionLevel sets the deflate level used by Export for every entry
// except the mimetype declaration. Out-of-range levels are ignored.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		if level >= flate.HuffmanOnly && level <= flate.BestCompression {
			o.level = level
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log:   zap.NewNop(),
		level: flate.BestCompression,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
