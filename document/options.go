package document

import (
	"time"

	"github.com/kochabx/docvault/log"
)

// Option configures a Service.
type Option func(*Service)

// WithConfig replaces the default Config. Unset fields keep their defaults.
func WithConfig(c Config) Option {
	return func(s *Service) {
		s.config = c
	}
}

// WithPublisher sets the activity publisher.
func WithPublisher(p ActivityPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
