package processor

import (
	"slices"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

type SetOptions struct {
	// MustExist refuses to create missing nodes and fails when nothing
	// matches.
	MustExist bool
	Format    yamlnode.Format
	Tag       string
}

// Set replaces every node matching path with value rendered in the
// requested format.
func (p *Processor) Set(path ypath.Path, value string, opts SetOptions) error {
	if p.doc.IsNull() {
		p.log.Debug("refusing to set nodes of a null document", "path", path.String())
		return nil
	}

	targets, err := p.gather(path, !opts.MustExist, nil)
	if err != nil {
		return err
	}
	if opts.MustExist && len(targets) == 0 {
		return pathError(path, nil, ErrNotFound, "No nodes matched required YAML Path")
	}

	p.log.Debug("setting nodes", "path", path.String(), "count", len(targets), "format", string(opts.Format))
	for _, t := range targets {
		for _, c := range t.expand() {
			if err := p.update(path, c, value, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetText parses text with sep and calls Set.
func (p *Processor) SetText(text string, sep ypath.Separator, value string, opts SetOptions) error {
	path, err := p.parse(text, sep)
	if err != nil {
		return err
	}
	return p.Set(path, value, opts)
}

// Rename changes the key of every mapping entry matching path.
func (p *Processor) Rename(path ypath.Path, newName string) error {
	name := ypath.Segment{Type: ypath.KeywordSegment, Keyword: ypath.KeywordTerms{Keyword: ypath.Name}}
	return p.Set(path.Append(name), newName, SetOptions{MustExist: true})
}

func (p *Processor) update(path ypath.Path, c *Coords, value string, opts SetOptions) error {
	if c.readOnly {
		return pathError(path, &c.Segment, ErrStructureMismatch, "Cannot write to Collector results")
	}
	if c.name {
		return p.rename(path, c, value)
	}

	repl, err := yamlnode.NewNode(c.Node, value, opts.Format, opts.Tag)
	if err != nil {
		return pathError(path, nil, yamlnode.ErrValue, "Impossible to write '%s' as %s. The error was: %v", value, opts.Format, err)
	}
	if c.Node == nil {
		return p.setAt(c, repl)
	}
	return p.replace(path, c.Node, repl)
}

// replace swaps every occurrence of old for repl, matching by identity so
// an anchor and all of its aliases end up sharing repl. Merge sources only
// accept a mapping replacement.
func (p *Processor) replace(path ypath.Path, old, repl *yamlnode.Node) error {
	if repl.Kind != yamlnode.Mapping && mergedSource(p.doc.Root, old) {
		return pathError(path, nil, ErrStructureMismatch,
			"Cannot replace a YAML Merge Key source with a non-Hash value")
	}
	if p.doc.Root == old {
		p.doc.Root = repl
	}
	for n := range yamlnode.Walk(p.doc.Root) {
		for _, pr := range n.Pairs {
			if pr.Key == old {
				pr.Key = repl
			}
			if pr.Value == old {
				pr.Value = repl
			}
		}
		for i, item := range n.Items {
			if item == old {
				n.Items[i] = repl
			}
		}
		for i, src := range n.Merge {
			if src == old {
				n.Merge[i] = repl
			}
		}
	}
	p.doc.Reindex()
	return nil
}

func mergedSource(root, n *yamlnode.Node) bool {
	for m := range yamlnode.Walk(root) {
		if slices.Contains(m.Merge, n) {
			return true
		}
	}
	return false
}

// setAt stores node at the location c points to, leaving other
// occurrences of the previous node untouched.
func (p *Processor) setAt(c *Coords, node *yamlnode.Node) error {
	parent := c.Parent
	switch {
	case parent == nil:
		p.doc.Root = node
	case c.ParentRef.Merge:
		if node.Kind != yamlnode.Mapping {
			return pathError(c.Path, nil, ErrStructureMismatch,
				"Cannot replace a YAML Merge Key source with a non-Hash value")
		}
		if i := slices.Index(parent.Merge, c.Node); i >= 0 {
			parent.Merge[i] = node
		}
	case parent.Kind == yamlnode.Mapping:
		parent.Put(c.ParentRef.Key, node)
	case parent.Kind == yamlnode.Sequence:
		i := itemIndex(parent, c)
		if i < 0 {
			return pathError(c.Path, nil, ErrNotFound, "%s is no longer part of the document", displayPath(c.Path))
		}
		parent.Items[i] = node
	case parent.Kind == yamlnode.Set:
		i := parent.LocalIndex(c.ParentRef.Key)
		if i < 0 {
			return pathError(c.Path, nil, ErrNotFound, "%s is no longer part of the document", displayPath(c.Path))
		}
		parent.Pairs[i].Key = node
	}
	p.doc.Reindex()
	return nil
}

// itemIndex locates c within a sequence parent, trusting the recorded
// index while it still holds the same node.
func itemIndex(parent *yamlnode.Node, c *Coords) int {
	i := c.ParentRef.Index
	if i >= 0 && i < len(parent.Items) && (c.name || parent.Items[i] == c.Node) {
		return i
	}
	if c.name {
		return -1
	}
	return slices.Index(parent.Items, c.Node)
}

func (p *Processor) rename(path ypath.Path, c *Coords, newName string) error {
	parent := c.Parent
	if parent == nil || parent.Kind != yamlnode.Mapping {
		return pathError(path, &c.Segment, ErrStructureMismatch, "Keys can be renamed only in Hash/map data; %s is not a mapping key", displayPath(c.Path))
	}

	old := c.ParentRef.Key
	if old == newName {
		return nil
	}
	if parent.Has(newName) {
		return pathError(path, &c.Segment, ErrDuplicateKey, "Key, %s, already exists at the same document level in %s", newName, displayPath(c.Path.Parent()))
	}

	i := parent.LocalIndex(old)
	if i < 0 {
		return pathError(path, &c.Segment, ErrStructureMismatch, "Key, %s, is imported through a YAML merge key and cannot be renamed in place", old)
	}
	key, err := yamlnode.NewNode(parent.Pairs[i].Key, newName, yamlnode.FormatDefault, "")
	if err != nil {
		return pathError(path, &c.Segment, yamlnode.ErrValue, "%v", err)
	}
	p.log.Debug("renaming key", "from", old, "to", newName)
	parent.Pairs[i].Key = key
	p.doc.Reindex()
	return nil
}
