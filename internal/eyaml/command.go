// Package eyaml encrypts and decrypts EYAML values through the external
// eyaml command.
package eyaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
)

// OutputStyle selects how encrypted values are rendered.
type OutputStyle uint8

const (
	// StyleString renders ENC[...] on a single line.
	StyleString OutputStyle = iota
	// StyleBlock renders the value wrapped over several lines, meant for
	// folded scalars.
	StyleBlock
)

func (s OutputStyle) String() string {
	if s == StyleBlock {
		return "block"
	}
	return "string"
}

// ParseOutputStyle accepts "string" or "block".
func ParseOutputStyle(v string) (OutputStyle, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "string":
		return StyleString, nil
	case "block":
		return StyleBlock, nil
	}
	return StyleString, fmt.Errorf("unknown eyaml output style %q: want string or block", v)
}

// Transformer converts values to and from their encrypted form.
type Transformer interface {
	IsEncrypted(value string) bool
	Decrypt(ctx context.Context, value string) (string, error)
	Encrypt(ctx context.Context, value string, style OutputStyle) (string, error)
}

var encryptedRe = regexp.MustCompile(`^ENC\[.+\]$`)

// IsEncrypted reports whether value is an ENC[...] payload, ignoring the
// whitespace block output introduces.
func IsEncrypted(value string) bool {
	return encryptedRe.MatchString(compact(value))
}

func compact(value string) string {
	return strings.Join(strings.Fields(value), "")
}

// runFunc executes the eyaml binary with stdin and returns its stdout.
type runFunc func(ctx context.Context, binary string, args []string, stdin string) (string, error)

// Command is a Transformer backed by the eyaml binary.
type Command struct {
	binary     string
	privateKey string
	publicKey  string

	throttle *throttle
	run      runFunc
	log      *slog.Logger
}

type CommandOption func(*Command)

// WithBinary sets the eyaml executable name or path.
func WithBinary(binary string) CommandOption {
	return func(c *Command) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithKeys sets the PKCS7 key files passed to eyaml.
func WithKeys(privateKey, publicKey string) CommandOption {
	return func(c *Command) {
		c.privateKey = privateKey
		c.publicKey = publicKey
	}
}

// WithRate limits eyaml invocations per second; zero disables the limit.
func WithRate(perSecond float64) CommandOption {
	return func(c *Command) {
		c.throttle = newThrottle(perSecond)
	}
}

func WithLogger(l *slog.Logger) CommandOption {
	return func(c *Command) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCommand(opts ...CommandOption) *Command {
	c := &Command{
		binary:   "eyaml",
		throttle: newThrottle(0),
		run:      execRun,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Command) IsEncrypted(value string) bool {
	return IsEncrypted(value)
}

// Decrypt returns value unchanged when it is not encrypted.
func (c *Command) Decrypt(ctx context.Context, value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	payload := compact(value)
	out, err := c.invoke(ctx, []string{"decrypt", "--quiet", "--stdin"}, payload)
	if err != nil {
		return "", err
	}
	out = strings.TrimRight(out, "\r\n")
	if out == "" || out == payload {
		return "", fmt.Errorf("%w: unable to decrypt value", ErrTransformFailure)
	}
	return out, nil
}

// Encrypt returns the ENC[...] form of value.
func (c *Command) Encrypt(ctx context.Context, value string, style OutputStyle) (string, error) {
	if IsEncrypted(value) {
		return value, nil
	}

	args := []string{"encrypt", "--quiet", "--stdin", "--output=" + style.String()}
	out, err := c.invoke(ctx, args, value)
	if err != nil {
		return "", err
	}

	var encrypted string
	if style == StyleBlock {
		lines := strings.Split(strings.TrimSpace(out), "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(line)
		}
		encrypted = strings.Join(lines, "\n")
	} else {
		encrypted = strings.TrimSpace(out)
	}

	if !IsEncrypted(encrypted) {
		return "", fmt.Errorf("%w: unable to encrypt value", ErrTransformFailure)
	}
	return encrypted, nil
}

func (c *Command) invoke(ctx context.Context, args []string, stdin string) (string, error) {
	if c.privateKey != "" {
		args = append(args, "--pkcs7-private-key="+c.privateKey)
	}
	if c.publicKey != "" {
		args = append(args, "--pkcs7-public-key="+c.publicKey)
	}

	if err := c.throttle.wait(ctx); err != nil {
		return "", err
	}
	c.log.Debug("running eyaml", "binary", c.binary, "command", args[0])
	return c.run(ctx, c.binary, args, stdin)
}

func execRun(ctx context.Context, binary string, args []string, stdin string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCommandUnavailable, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s exited with %d: %s", ErrTransformFailure, binary, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %v", ErrCommandUnavailable, err)
	}
	return stdout.String(), nil
}
