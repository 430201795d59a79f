package processor

import (
	"slices"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Delete removes every node matching path and returns what was removed.
func (p *Processor) Delete(path ypath.Path) ([]*Coords, error) {
	if p.doc.IsNull() {
		p.log.Debug("refusing to delete nodes from a null document", "path", path.String())
		return nil, nil
	}

	targets, err := p.gather(path, false, nil)
	if err != nil {
		return nil, err
	}
	var removed []*Coords
	for _, t := range targets {
		removed = append(removed, t.expand()...)
	}

	// Later matches first so recorded sequence indexes stay valid.
	for i := len(removed) - 1; i >= 0; i-- {
		if err := p.remove(path, removed[i]); err != nil {
			return nil, err
		}
	}
	p.doc.Reindex()
	p.log.Debug("deleted nodes", "path", path.String(), "count", len(removed))
	return removed, nil
}

// DeleteText parses text with sep and calls Delete.
func (p *Processor) DeleteText(text string, sep ypath.Separator) ([]*Coords, error) {
	path, err := p.parse(text, sep)
	if err != nil {
		return nil, err
	}
	return p.Delete(path)
}

func (p *Processor) remove(path ypath.Path, c *Coords) error {
	if c.readOnly {
		return pathError(path, &c.Segment, ErrStructureMismatch, "Cannot write to Collector results")
	}
	parent := c.Parent
	if parent == nil {
		return pathError(path, nil, ErrStructureMismatch,
			"Refusing to delete the entire document! Ensure the source document is YAML, JSON, or compatible and the target nodes do not include the document root.")
	}

	switch {
	case c.ParentRef.Merge:
		if i := slices.Index(parent.Merge, c.Node); i >= 0 {
			parent.Merge = slices.Delete(parent.Merge, i, i+1)
		}
	case parent.Kind == yamlnode.Mapping:
		key := c.ParentRef.Key
		if !parent.Remove(key) && parent.Imported(key) {
			return pathError(path, &c.Segment, ErrStructureMismatch,
				"Key, %s, is imported through a YAML merge key; delete it from its source or remove the merge", key)
		}
	case parent.Kind == yamlnode.Sequence:
		if i := itemIndex(parent, c); i >= 0 {
			parent.Items = slices.Delete(parent.Items, i, i+1)
		}
	case parent.Kind == yamlnode.Set:
		parent.Remove(c.ParentRef.Key)
	}
	return nil
}

// Alias points every node matching aliasPath at the single node matching
// anchorPath, anchoring it first. An empty name keeps the existing anchor
// or generates one.
func (p *Processor) Alias(aliasPath, anchorPath ypath.Path, name string) error {
	if p.doc.IsNull() {
		p.log.Debug("refusing to alias nodes of a null document", "path", aliasPath.String())
		return nil
	}

	anchor, err := p.anchorTarget(anchorPath, name)
	if err != nil {
		return err
	}
	targets, err := p.gather(aliasPath, true, nil)
	if err != nil {
		return err
	}

	for _, t := range targets {
		for _, c := range t.expand() {
			if c.readOnly {
				return pathError(aliasPath, &c.Segment, ErrStructureMismatch, "Cannot write to Collector results")
			}
			if c.Node == anchor {
				continue
			}
			if c.Parent != nil && c.Parent.Kind == yamlnode.Set {
				return pathError(aliasPath, &c.Segment, ErrStructureMismatch, "Set members cannot be replaced by aliases")
			}
			if err := p.setAt(c, anchor); err != nil {
				return err
			}
		}
	}
	p.log.Debug("aliased nodes", "path", aliasPath.String(), "anchor", anchor.Anchor, "count", len(targets))
	return nil
}

// MergeKey adds the single mapping matching sourcePath as a YAML merge
// source of every mapping matching changePath.
func (p *Processor) MergeKey(changePath, sourcePath ypath.Path, name string) error {
	if p.doc.IsNull() {
		p.log.Debug("refusing to merge into a null document", "path", changePath.String())
		return nil
	}

	src, err := p.anchorTarget(sourcePath, name)
	if err != nil {
		return err
	}
	if src.Kind != yamlnode.Mapping {
		return pathError(sourcePath, nil, ErrStructureMismatch, "YAML Merge Keys may reference only Hash nodes")
	}

	targets, err := p.gather(changePath, true, yamlnode.NewMapping())
	if err != nil {
		return err
	}
	for _, t := range targets {
		for _, c := range t.expand() {
			if c.readOnly {
				return pathError(changePath, &c.Segment, ErrStructureMismatch, "Cannot write to Collector results")
			}
			if c.Node == nil || c.Node.Kind != yamlnode.Mapping {
				return pathError(changePath, &c.Segment, ErrStructureMismatch, "Cannot add YAML Merge Keys to non-Hash nodes specified by %s", displayPath(c.Path))
			}
			if c.Node == src {
				return pathError(changePath, &c.Segment, ErrStructureMismatch, "Cannot merge %s into itself", displayPath(c.Path))
			}
			if slices.Contains(c.Node.Merge, src) {
				continue
			}
			c.Node.Merge = append(c.Node.Merge, src)
		}
	}
	p.doc.Reindex()
	p.log.Debug("added merge keys", "path", changePath.String(), "anchor", src.Anchor, "count", len(targets))
	return nil
}

// Tag sets the YAML tag of every node matching path.
func (p *Processor) Tag(path ypath.Path, tag string) error {
	if p.doc.IsNull() {
		p.log.Debug("refusing to tag nodes of a null document", "path", path.String())
		return nil
	}

	targets, err := p.gather(path, false, nil)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return pathError(path, nil, ErrNotFound, "No nodes matched required YAML Path")
	}

	tag = yamlnode.NormalizeTag(tag)
	for _, t := range targets {
		for _, c := range t.expand() {
			if c.readOnly {
				return pathError(path, &c.Segment, ErrStructureMismatch, "Cannot write to Collector results")
			}
			node := c.Node
			if c.name {
				if i := c.Parent.LocalIndex(c.ParentRef.Key); i >= 0 {
					node = c.Parent.Pairs[i].Key
				}
			}
			node.Tag = tag
		}
	}
	return nil
}

// anchorTarget resolves the single node to be referenced and makes sure it
// carries an anchor.
func (p *Processor) anchorTarget(path ypath.Path, name string) (*yamlnode.Node, error) {
	found, err := p.gather(path, false, nil)
	if err != nil {
		return nil, err
	}
	var nodes []*Coords
	for _, f := range found {
		nodes = append(nodes, f.expand()...)
	}
	if len(nodes) == 0 {
		return nil, pathError(path, nil, ErrNotFound, "No nodes matched the anchor YAML Path")
	}
	if len(nodes) > 1 {
		return nil, pathError(path, nil, ErrStructureMismatch, "It is impossible to Alias more than one Anchor at a time!")
	}

	c := nodes[0]
	if c.readOnly || c.name {
		return nil, pathError(path, &c.Segment, ErrStructureMismatch, "Cannot anchor synthetic nodes")
	}
	node := c.Node

	switch {
	case name != "":
		if owner, ok := p.doc.Anchor(name); ok && owner != node {
			return nil, pathError(path, nil, ErrDuplicateKey,
				"Anchor names must be unique within YAML documents. Anchor name, %s, is already used.", name)
		}
		node.Anchor = name
	case node.Anchor == "":
		base := ""
		if c.Parent != nil && c.Parent.Kind == yamlnode.Mapping {
			base = c.ParentRef.Key
		}
		node.Anchor = p.doc.UniqueAnchorName(base)
	}
	p.doc.Reindex()
	return node, nil
}
