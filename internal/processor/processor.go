// Package processor evaluates YAML Paths against documents and applies
// changes to the matched nodes.
package processor

import (
	"iter"
	"log/slog"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Processor evaluates paths against one document. It is not safe for
// concurrent use.
type Processor struct {
	doc    *yamlnode.Document
	log    *slog.Logger
	parser *ypath.Parser
}

type Option func(*Processor)

// WithLogger sets the logger receiving evaluation progress at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithParser sets the parser used for path text, collectors and
// descendant searches. The process-wide parser is used otherwise.
func WithParser(ps *ypath.Parser) Option {
	return func(p *Processor) {
		p.parser = ps
	}
}

func New(doc *yamlnode.Document, opts ...Option) *Processor {
	if doc == nil {
		doc = yamlnode.NewDocument(nil)
	}
	p := &Processor{doc: doc, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document returns the document being processed.
func (p *Processor) Document() *yamlnode.Document {
	return p.doc
}

func (p *Processor) parse(text string, sep ypath.Separator) (ypath.Path, error) {
	if p.parser != nil {
		return p.parser.Parse(text, sep)
	}
	return ypath.Parse(text, sep)
}

type GetOptions struct {
	// MustExist disables creation of missing nodes and turns an empty
	// result into ErrNotFound.
	MustExist bool
	// Default is the value given to created terminal nodes; nil is null.
	Default *yamlnode.Node
}

// Get streams the nodes matching path in document order. Missing nodes are
// created unless MustExist is set. Creation only happens ahead of the node
// being yielded, so stopping early leaves the rest of the document alone.
func (p *Processor) Get(path ypath.Path, opts GetOptions) iter.Seq2[*Coords, error] {
	return func(yield func(*Coords, error) bool) {
		q := p.newQuery(path, !opts.MustExist, opts.Default)
		if err := q.checkTraversals(); err != nil {
			yield(nil, err)
			return
		}
		if p.doc.IsNull() {
			p.log.Debug("refusing to get nodes from a null document", "path", path.String())
			return
		}

		p.log.Debug("getting nodes", "path", path.String(), "mustexist", opts.MustExist)
		matched, stopped := 0, false
		q.run(rootCoords(p.doc, path.Separator()), 0, func(c *Coords, err error) bool {
			if err != nil {
				stopped = true
				yield(nil, err)
				return false
			}
			matched++
			if !yield(c, nil) {
				stopped = true
				return false
			}
			return true
		})
		if !stopped && opts.MustExist && matched == 0 {
			yield(nil, pathError(path, nil, ErrNotFound, "Required YAML Path does not match any nodes"))
		}
	}
}

// GetText parses text with sep and calls Get.
func (p *Processor) GetText(text string, sep ypath.Separator, opts GetOptions) iter.Seq2[*Coords, error] {
	path, err := p.parse(text, sep)
	if err != nil {
		return func(yield func(*Coords, error) bool) {
			yield(nil, err)
		}
	}
	return p.Get(path, opts)
}

// Nodes collects every match of Get.
func (p *Processor) Nodes(path ypath.Path, opts GetOptions) ([]*Coords, error) {
	var out []*Coords
	for c, err := range p.Get(path, opts) {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Exists reports whether path matches at least one node, without creating
// anything.
func (p *Processor) Exists(path ypath.Path) (bool, error) {
	q := p.newQuery(path, false, nil)
	if err := q.checkTraversals(); err != nil {
		return false, err
	}
	if p.doc.IsNull() {
		return false, nil
	}

	found := false
	var ferr error
	q.run(rootCoords(p.doc, path.Separator()), 0, func(_ *Coords, err error) bool {
		if err != nil {
			ferr = err
		} else {
			found = true
		}
		return false
	})
	return found, ferr
}

// gather evaluates path completely before any change is applied.
func (p *Processor) gather(path ypath.Path, ensure bool, value *yamlnode.Node) ([]*Coords, error) {
	q := p.newQuery(path, ensure, value)
	if err := q.checkTraversals(); err != nil {
		return nil, err
	}

	var (
		out  []*Coords
		ferr error
	)
	q.run(rootCoords(p.doc, path.Separator()), 0, func(c *Coords, err error) bool {
		if err != nil {
			ferr = err
			return false
		}
		out = append(out, c)
		return true
	})
	return out, ferr
}
