package fcsfile

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/internal/options"
)

type config struct {
	writable bool
	log      logrus.FieldLogger
}

// Option configures Open and OpenArchive.
type Option = options.Option[*config]

// WithWritable maps the file read-write so MappedColumn setters can modify
// DATA in place. Archives ignore it.
func WithWritable() Option {
	return options.NoError(func(c *config) {
		c.writable = true
	})
}

// WithLogger sets the logger for debug output. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.log = l
		}
	})
}

func newConfig(opts []Option) (*config, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &config{log: discard}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}
