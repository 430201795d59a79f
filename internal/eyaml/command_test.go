package eyaml

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	binary string
	args   []string
	stdin  string
}

func fakeRunner(out string, err error, calls *[]recordedCall) runFunc {
	return func(_ context.Context, binary string, args []string, stdin string) (string, error) {
		*calls = append(*calls, recordedCall{binary: binary, args: args, stdin: stdin})
		return out, err
	}
}

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "single_line", value: "ENC[PKCS7,MIIBiQYJKoZIhvcNAQcDoIIBejCCAXYCAQAx]", want: true},
		{name: "block_output", value: "ENC[PKCS7,MIIBiQYJKoZI\n    hvcNAQcDoIIBejCCAXYCAQAx]\n", want: true},
		{name: "plain_text", value: "hello"},
		{name: "empty_payload", value: "ENC[]"},
		{name: "prefix_only", value: "xENC[abc]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEncrypted(tt.value); got != tt.want {
				t.Errorf("IsEncrypted(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseOutputStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputStyle
		wantErr bool
	}{
		{in: "", want: StyleString},
		{in: "string", want: StyleString},
		{in: "BLOCK", want: StyleBlock},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputStyle(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_Decrypt(t *testing.T) {
	var calls []recordedCall
	c := NewCommand(WithBinary("/opt/eyaml"), WithKeys("/keys/private.pem", "/keys/public.pem"))
	c.run = fakeRunner("secret\n", nil, &calls)

	got, err := c.Decrypt(context.Background(), "ENC[PKCS7,abc\n  def]")
	require.NoError(t, err)
	require.Equal(t, "secret", got)

	require.Len(t, calls, 1)
	require.Equal(t, "/opt/eyaml", calls[0].binary)
	require.Equal(t, "ENC[PKCS7,abcdef]", calls[0].stdin)
	require.Equal(t, []string{
		"decrypt", "--quiet", "--stdin",
		"--pkcs7-private-key=/keys/private.pem",
		"--pkcs7-public-key=/keys/public.pem",
	}, calls[0].args)
}

func TestCommand_DecryptPlainTextSkipsCommand(t *testing.T) {
	var calls []recordedCall
	c := NewCommand()
	c.run = fakeRunner("", nil, &calls)

	got, err := c.Decrypt(context.Background(), "plain")
	require.NoError(t, err)
	require.Equal(t, "plain", got)
	require.Empty(t, calls)
}

func TestCommand_DecryptFailure(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		runErr  error
		wantErr error
	}{
		{name: "empty_output", out: "", wantErr: ErrTransformFailure},
		{name: "echoed_input", out: "ENC[PKCS7,abc]", wantErr: ErrTransformFailure},
		{name: "missing_binary", runErr: ErrCommandUnavailable, wantErr: ErrCommandUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []recordedCall
			c := NewCommand()
			c.run = fakeRunner(tt.out, tt.runErr, &calls)

			_, err := c.Decrypt(context.Background(), "ENC[PKCS7,abc]")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCommand_Encrypt(t *testing.T) {
	tests := []struct {
		name     string
		style    OutputStyle
		out      string
		want     string
		wantFlag string
	}{
		{
			name:     "string",
			style:    StyleString,
			out:      "ENC[PKCS7,abcdef]\n",
			want:     "ENC[PKCS7,abcdef]",
			wantFlag: "--output=string",
		},
		{
			name:     "block",
			style:    StyleBlock,
			out:      "    ENC[PKCS7,abc\n    def]\n",
			want:     "ENC[PKCS7,abc\ndef]",
			wantFlag: "--output=block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []recordedCall
			c := NewCommand()
			c.run = fakeRunner(tt.out, nil, &calls)

			got, err := c.Encrypt(context.Background(), "secret", tt.style)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Len(t, calls, 1)
			require.Equal(t, "secret", calls[0].stdin)
			require.Contains(t, calls[0].args, tt.wantFlag)
		})
	}
}

func TestCommand_EncryptRejectsGarbage(t *testing.T) {
	var calls []recordedCall
	c := NewCommand()
	c.run = fakeRunner("usage: eyaml ...", nil, &calls)

	_, err := c.Encrypt(context.Background(), "secret", StyleString)
	require.ErrorIs(t, err, ErrTransformFailure)
}

func TestCommand_ThrottleHonoursContext(t *testing.T) {
	var calls []recordedCall
	c := NewCommand(WithRate(0.001))
	c.run = fakeRunner("ENC[PKCS7,x]", nil, &calls)

	_, err := c.Encrypt(context.Background(), "first", StyleString)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Encrypt(ctx, "second", StyleString)
	require.Error(t, err)
	require.Len(t, calls, 1)
}

func TestThrottle_PerSecond(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{name: "unlimited", rate: 0, want: 0},
		{name: "negative_is_unlimited", rate: -1, want: 0},
		{name: "limited", rate: 5, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newThrottle(tt.rate).perSecond(); got != tt.want {
				t.Errorf("perSecond() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecRun_MissingBinary(t *testing.T) {
	_, err := execRun(context.Background(), "definitely-not-an-eyaml-binary-"+strings.Repeat("x", 8), nil, "")
	if !errors.Is(err, ErrCommandUnavailable) {
		t.Errorf("execRun() error = %v, want ErrCommandUnavailable", err)
	}
}
