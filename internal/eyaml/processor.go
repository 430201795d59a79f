package eyaml

import (
	"context"
	"iter"

	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Processor adds EYAML awareness to a processor.Processor.
type Processor struct {
	*processor.Processor
	t Transformer
}

func NewProcessor(doc *yamlnode.Document, t Transformer, opts ...processor.Option) *Processor {
	return &Processor{Processor: processor.New(doc, opts...), t: t}
}

// GetDecrypted yields the values matching path, decrypting the encrypted
// ones. Collections are yielded as YAML text.
func (p *Processor) GetDecrypted(ctx context.Context, path ypath.Path, opts processor.GetOptions) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for c, err := range p.Get(path, opts) {
			if err != nil {
				yield("", err)
				return
			}
			value := c.Node.String()
			if c.Node.IsScalar() && p.t.IsEncrypted(value) {
				value, err = p.t.Decrypt(ctx, value)
				if err != nil {
					yield("", err)
					return
				}
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}

// SetEncrypted encrypts value and stores it at every node matching path.
// Block output is written as a folded scalar.
func (p *Processor) SetEncrypted(ctx context.Context, path ypath.Path, value string, style OutputStyle, mustExist bool) error {
	encrypted, err := p.t.Encrypt(ctx, value, style)
	if err != nil {
		return err
	}
	format := yamlnode.FormatBare
	if style == StyleBlock {
		format = yamlnode.FormatFolded
	}
	return p.Set(path, encrypted, processor.SetOptions{MustExist: mustExist, Format: format})
}

// EncryptedPaths yields the concrete path of every encrypted scalar.
func (p *Processor) EncryptedPaths() iter.Seq2[ypath.Path, error] {
	return func(yield func(ypath.Path, error) bool) {
		for c, err := range p.Get(ypath.NewPath(ypath.Dot, ypath.Segment{Type: ypath.TraverseSegment}), processor.GetOptions{MustExist: false}) {
			if err != nil {
				yield(ypath.Path{}, err)
				return
			}
			if !isEncryptedScalar(p.t, c.Node) {
				continue
			}
			if !yield(c.Path, nil) {
				return
			}
		}
	}
}

func isEncryptedScalar(t Transformer, n *yamlnode.Node) bool {
	return n != nil && n.Kind == yamlnode.Scalar && t.IsEncrypted(n.Value)
}
