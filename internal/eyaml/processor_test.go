package eyaml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// rot13 stands in for eyaml: ENC[<rot13>].
type rot13 struct {
	decrypts int
}

func (r *rot13) IsEncrypted(value string) bool {
	return IsEncrypted(value)
}

func (r *rot13) Decrypt(_ context.Context, value string) (string, error) {
	r.decrypts++
	payload := strings.TrimSuffix(strings.TrimPrefix(compact(value), "ENC["), "]")
	return rotate(payload), nil
}

func (r *rot13) Encrypt(_ context.Context, value string, style OutputStyle) (string, error) {
	out := "ENC[" + rotate(value) + "]"
	if style == StyleBlock {
		out = out[:4] + "\n" + out[4:]
	}
	return out, nil
}

func rotate(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

func newEYAMLProcessor(t *testing.T, src string) (*Processor, *rot13) {
	t.Helper()
	doc, err := yamlnode.LoadString(src)
	require.NoError(t, err)
	r := &rot13{}
	return NewProcessor(doc, r), r
}

const secrets = `
db:
  user: admin
  password: ENC[frperg]
api:
  token: ENC[gbxra]
`

func TestGetDecrypted(t *testing.T) {
	tests := []struct {
		path          string
		want          []string
		wantDecrypted int
	}{
		{path: "db.password", want: []string{"secret"}, wantDecrypted: 1},
		{path: "db.user", want: []string{"admin"}},
		{path: "/api/token", want: []string{"token"}, wantDecrypted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, r := newEYAMLProcessor(t, secrets)

			var got []string
			for v, err := range p.GetDecrypted(context.Background(), ypath.MustParse(tt.path, ypath.Auto), processor.GetOptions{MustExist: true}) {
				require.NoError(t, err)
				got = append(got, v)
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantDecrypted, r.decrypts)
		})
	}
}

func TestGetDecrypted_NotFound(t *testing.T) {
	p, _ := newEYAMLProcessor(t, secrets)

	var err error
	for _, e := range p.GetDecrypted(context.Background(), ypath.MustParse("db.missing", ypath.Auto), processor.GetOptions{MustExist: true}) {
		err = e
	}
	require.ErrorIs(t, err, processor.ErrNotFound)
}

func TestSetEncrypted(t *testing.T) {
	tests := []struct {
		name      string
		style     OutputStyle
		wantStyle yamlnode.Style
	}{
		{name: "string", style: StyleString, wantStyle: yamlnode.Plain},
		{name: "block", style: StyleBlock, wantStyle: yamlnode.Folded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newEYAMLProcessor(t, secrets)
			path := ypath.MustParse("db.password", ypath.Auto)

			require.NoError(t, p.SetEncrypted(context.Background(), path, "hunter", tt.style, true))

			nodes, err := p.Nodes(path, processor.GetOptions{MustExist: true})
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			require.True(t, IsEncrypted(nodes[0].Node.Value))
			require.Equal(t, tt.wantStyle, nodes[0].Node.Style)

			var got []string
			for v, err := range p.GetDecrypted(context.Background(), path, processor.GetOptions{MustExist: true}) {
				require.NoError(t, err)
				got = append(got, v)
			}
			require.Equal(t, []string{"hunter"}, got)
		})
	}
}

func TestEncryptedPaths(t *testing.T) {
	p, _ := newEYAMLProcessor(t, secrets)

	var got []string
	for path, err := range p.EncryptedPaths() {
		require.NoError(t, err)
		got = append(got, path.String())
	}
	require.Equal(t, []string{"db.password", "api.token"}, got)
}
