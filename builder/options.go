package builder

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/fcs/endian"
	"github.com/arloliu/fcs/errs"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/internal/options"
	"github.com/arloliu/fcs/section"
)

// Template supplies the starting metadata of a build. *fcsfile.File
// satisfies it.
type Template interface {
	Text() *section.Text
	Version() format.Version
}

type config struct {
	text        *section.Text
	version     format.Version
	delimiter   byte
	engine      endian.EndianEngine
	forceNarrow bool
	log         logrus.FieldLogger
}

// Option configures FromDataset.
type Option = options.Option[*config]

// WithTemplate starts from the keywords, detectors, delimiter and version of t.
// Detector metadata is carried over for every column whose name matches a
// template parameter.
func WithTemplate(t Template) Option {
	return options.NoError(func(c *config) {
		if t == nil {
			return
		}
		c.text = t.Text()
		if c.version == "" {
			c.version = t.Version()
		}
	})
}

// WithTemplateText starts from an already parsed TEXT segment. The text is
// cloned; the caller keeps ownership of t.
func WithTemplateText(t *section.Text, v format.Version) Option {
	return options.NoError(func(c *config) {
		if t == nil {
			return
		}
		c.text = t.Clone()
		if c.version == "" {
			c.version = v
		}
	})
}

// WithVersion sets the version tag written into HEADER.
func WithVersion(v format.Version) Option {
	return options.New(func(c *config) error {
		if _, ok := format.ParseVersion(string(v)); !ok {
			return errs.Unsupported("version %q", v)
		}
		c.version = v

		return nil
	})
}

// WithDelimiter overrides the TEXT delimiter. It must be a printable,
// non-space ASCII byte.
func WithDelimiter(d byte) Option {
	return options.New(func(c *config) error {
		if err := section.ValidateDelimiter(d); err != nil {
			return err
		}
		c.delimiter = d

		return nil
	})
}

// WithByteOrder overrides the DATA byte order. The default is the template's
// $BYTEORD when it is supported, little-endian otherwise.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError(func(c *config) {
		c.engine = engine
	})
}

// WithForceNarrow writes every column as a 32-bit float ($DATATYPE F, $PnB 32)
// regardless of the source kinds.
func WithForceNarrow() Option {
	return options.NoError(func(c *config) {
		c.forceNarrow = true
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

type writeConfig struct {
	overwrite bool
	fcsSuffix bool
}

// WriteOption configures Write and WriteArchive.
type WriteOption = options.Option[*writeConfig]

// WithOverwrite replaces an existing target. Without it Write fails with
// ErrTargetExists when the target is already present.
func WithOverwrite() WriteOption {
	return options.NoError(func(c *writeConfig) {
		c.overwrite = true
	})
}

// WithFCSSuffix appends ".fcs" to a Write target that lacks it.
func WithFCSSuffix() WriteOption {
	return options.NoError(func(c *writeConfig) {
		c.fcsSuffix = true
	})
}
