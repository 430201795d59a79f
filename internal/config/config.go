package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jacoelho/yamlpath/internal/console"
	"github.com/jacoelho/yamlpath/internal/document"
	"github.com/jacoelho/yamlpath/internal/eyaml"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// EnvPathSep supplies the separator when --pathsep is not given.
const EnvPathSep = "YAMLPATH_PATHSEP"

var (
	ErrNoPath          = errors.New("no YAML Path provided")
	ErrConflictingMode = errors.New("conflicting options")
	ErrNegativeRate    = errors.New("eyaml rate cannot be negative")
	ErrMissingKeyFile  = errors.New("eyaml key file not found")
)

// Config holds the options shared by every command.
type Config struct {
	File    string
	PathSep ypath.Separator

	Debug   bool
	Verbose bool
	Quiet   bool
	NoColor bool

	EYAML EYAML
}

// EYAML configures the eyaml command used for encrypted values.
type EYAML struct {
	Enabled    bool
	Binary     string
	PrivateKey string
	PublicKey  string
	// Rate limits eyaml invocations per second (0 = unlimited).
	Rate float64
}

// BindFlags registers the shared flags on fs.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.File, "file", "f", document.Stdin, "YAML file to read, - for stdin")
	fs.VarP(&separatorValue{sep: &c.PathSep}, "pathsep", "t", "YAML Path separator: auto, dot or fslash")
	fs.BoolVarP(&c.Debug, "debug", "d", false, "Output debugging details")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "Increase output verbosity")
	fs.BoolVarP(&c.Quiet, "quiet", "q", false, "Suppress all output except errors")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colored output")

	fs.BoolVar(&c.EYAML.Enabled, "eyaml", false, "Decrypt and encrypt EYAML values")
	fs.StringVar(&c.EYAML.Binary, "eyaml-binary", "eyaml", "Name or path of the eyaml command")
	fs.StringVar(&c.EYAML.PrivateKey, "eyaml-private-key", "", "EYAML PKCS7 private key file")
	fs.StringVar(&c.EYAML.PublicKey, "eyaml-public-key", "", "EYAML PKCS7 public key file")
	fs.Float64Var(&c.EYAML.Rate, "eyaml-rate", 0, "Maximum eyaml invocations per second (0 for unlimited)")
}

// ApplyEnv fills values not set on the command line from the environment.
func (c *Config) ApplyEnv(fs *pflag.FlagSet, getenv func(string) string) error {
	if fs.Changed("pathsep") {
		return nil
	}
	v := getenv(EnvPathSep)
	if v == "" {
		return nil
	}
	sep, err := ypath.ParseSeparator(v)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvPathSep, err)
	}
	c.PathSep = sep
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Quiet && (c.Verbose || c.Debug) {
		return fmt.Errorf("%w: --quiet cannot be combined with --verbose or --debug", ErrConflictingMode)
	}
	if c.EYAML.Rate < 0 {
		return ErrNegativeRate
	}
	for _, key := range []string{c.EYAML.PrivateKey, c.EYAML.PublicKey} {
		if key == "" {
			continue
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingKeyFile, key)
		}
	}
	return nil
}

// Console returns the logging options.
func (c *Config) Console() console.Options {
	return console.Options{Debug: c.Debug, Verbose: c.Verbose, Quiet: c.Quiet, NoColor: c.NoColor}
}

// Transformer builds the eyaml command, or nil when EYAML is disabled.
func (c *Config) Transformer(opts ...eyaml.CommandOption) eyaml.Transformer {
	if !c.EYAML.Enabled {
		return nil
	}
	opts = append([]eyaml.CommandOption{
		eyaml.WithBinary(c.EYAML.Binary),
		eyaml.WithKeys(c.EYAML.PrivateKey, c.EYAML.PublicKey),
		eyaml.WithRate(c.EYAML.Rate),
	}, opts...)
	return eyaml.NewCommand(opts...)
}

// ParsePath parses text with the configured separator.
func (c *Config) ParsePath(text string) (ypath.Path, error) {
	if strings.TrimSpace(text) == "" {
		return ypath.Path{}, ErrNoPath
	}
	return ypath.Parse(text, c.PathSep)
}

// separatorValue implements pflag.Value for --pathsep.
type separatorValue struct {
	sep *ypath.Separator
}

func (s *separatorValue) String() string {
	if s.sep == nil {
		return ypath.Auto.Name()
	}
	return s.sep.Name()
}

func (s *separatorValue) Set(v string) error {
	sep, err := ypath.ParseSeparator(v)
	if err != nil {
		return err
	}
	*s.sep = sep
	return nil
}

func (s *separatorValue) Type() string {
	return "separator"
}

// formatValue implements pflag.Value for --format.
type formatValue struct {
	format *yamlnode.Format
}

func (f *formatValue) String() string {
	if f.format == nil || *f.format == "" {
		return string(yamlnode.FormatDefault)
	}
	return string(*f.format)
}

func (f *formatValue) Set(v string) error {
	format, err := yamlnode.ParseFormat(v)
	if err != nil {
		return err
	}
	*f.format = format
	return nil
}

func (f *formatValue) Type() string {
	return "format"
}

// styleValue implements pflag.Value for --eyaml-output.
type styleValue struct {
	style *eyaml.OutputStyle
}

func (s *styleValue) String() string {
	if s.style == nil {
		return eyaml.StyleString.String()
	}
	return s.style.String()
}

func (s *styleValue) Set(v string) error {
	style, err := eyaml.ParseOutputStyle(v)
	if err != nil {
		return err
	}
	*s.style = style
	return nil
}

func (s *styleValue) Type() string {
	return "style"
}
