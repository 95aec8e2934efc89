package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// Option configures the resolver, router and generator
type Option func(*settings)

type settings struct {
	logger *log.Logger
}

// WithLogger routes progress messages to logger. Without it the engine is
// silent.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func applyOptions(opts []Option) settings {
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}
