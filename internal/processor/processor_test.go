package processor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

const fixture = `aliases:
  - &aliasAnchorOne Anchored Scalar Value
  - &aliasAnchorTwo Hey, Number Two!
array_of_hashes: &arrayOfHashes
  - step: 1
    name: one
  - step: 2
    name: two
rollback_hashes:
  on_condition:
    failure:
      - step: 3
        name: three
      - step: 4
        name: four
disabled_steps:
  - 2
  - 3
squads:
  alpha: 1.1
  bravo: 2.2
  charlie: 3.3
  delta: 4.4
number_keys:
  1: one
  2: two
  3: three
lots_of_names:
  name: Name 1-1
  tier1:
    name: Name 2-1
    tier2:
      name: Name 3-1
      list_of_named_objects:
        - name: Name 4-1
          tag: Tag 4-1
        - name: Name 4-2
        - name: Name 4-3
        - name: Name 4-4
products_hash:
  doodad:
    availability:
      start:
        date: 2020-10-10
      stop:
        date: 2020-10-29
    dimensions:
      width: 5
      weight: 10
  fob:
    availability:
      start:
        date: 2020-03-01
      stop:
        date: 2020-03-30
    dimensions:
      width: 1
      weight: 4
  widget:
    availability:
      start:
        date: 2020-01-01
      stop:
        date: 2020-01-31
    dimensions:
      width: 9
      weight: 4
products_array:
  - product: doodad
    dimensions:
      weight: 10
  - product: fob
    dimensions:
      weight: 4
  - product: widget
    dimensions:
      weight: 4
`

func newProcessor(t *testing.T, src string) *Processor {
	t.Helper()
	doc, err := yamlnode.LoadString(src)
	require.NoError(t, err)
	return New(doc)
}

func values(t *testing.T, p *Processor, expr string, opts GetOptions) []any {
	t.Helper()
	var out []any
	for c, err := range p.GetText(expr, ypath.Auto, opts) {
		require.NoError(t, err)
		out = append(out, yamlnode.Interface(c.Node))
	}
	return out
}

func getErr(p *Processor, expr string, opts GetOptions) error {
	for _, err := range p.GetText(expr, ypath.Auto, opts) {
		if err != nil {
			return err
		}
	}
	return nil
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []any
	}{
		{name: "anchor_in_list", expr: "aliases[&aliasAnchorOne]", want: []any{"Anchored Scalar Value"}},
		{name: "second_anchor_in_list", expr: "aliases[&aliasAnchorTwo]", want: []any{"Hey, Number Two!"}},
		{name: "index_then_key", expr: "array_of_hashes[1].step", want: []any{2.0}},
		{name: "search_array_of_hashes", expr: "array_of_hashes[step=1].name", want: []any{"one"}},
		{name: "plain_keys", expr: "squads.bravo", want: []any{2.2}},
		{name: "search_mapping_attribute", expr: "squads[alpha=1.1]", want: []any{1.1}},
		{name: "regex_on_key_names", expr: `squads[.=~/^\w{6,}$/]`, want: []any{3.3}},
		{name: "mapping_slice", expr: "squads[bravo:charlie]", want: []any{2.2, 3.3}},
		{name: "key_name_ordering", expr: "squads[.>=charlie]", want: []any{3.3, 4.4}},
		{name: "numeric_looking_key", expr: "/number_keys/1", want: []any{"one"}},
		{name: "single_element_slice", expr: "aliases[1:2]", want: []any{[]any{"Hey, Number Two!"}}},
		{name: "list_slice", expr: "aliases[0:2]", want: []any{[]any{"Anchored Scalar Value", "Hey, Number Two!"}}},
		{name: "negative_index", expr: "disabled_steps[-1]", want: []any{3.0}},
		{name: "leading_anchor_with_pass_through", expr: "&arrayOfHashes.step", want: []any{1.0, 2.0}},
		{name: "leading_anchor_search", expr: "&arrayOfHashes[step=1].name", want: []any{"one"}},
		{name: "array_of_hashes_pass_through", expr: "/rollback_hashes/on_condition/failure/name", want: []any{"three", "four"}},
		{
			name: "collector_addition_mixed_separators",
			expr: "(&arrayOfHashes.step)+(/rollback_hashes/on_condition/failure/step)",
			want: []any{[]any{1.0, 2.0, 3.0, 4.0}},
		},
		{
			name: "collector_left_to_right",
			expr: "(&arrayOfHashes.step)+(/rollback_hashes/on_condition/failure/step)-(disabled_steps)",
			want: []any{[]any{1.0, 4.0}},
		},
		{
			name: "collector_addition_order",
			expr: "(disabled_steps)+(&arrayOfHashes.step)",
			want: []any{[]any{2.0, 3.0, 1.0, 2.0}},
		},
		{
			name: "collector_nested",
			expr: "(&arrayOfHashes.step)+((/rollback_hashes/on_condition/failure/step)-(disabled_steps))",
			want: []any{[]any{1.0, 2.0, 4.0}},
		},
		{name: "collector_index", expr: "((&arrayOfHashes.step)[1])[0]", want: []any{2.0}},
		{name: "collector_then_index", expr: "(&arrayOfHashes.step)+(disabled_steps)[1]", want: []any{2.0}},
		{
			name: "traversal_then_key",
			expr: "lots_of_names.**.name",
			want: []any{"Name 1-1", "Name 2-1", "Name 3-1", "Name 4-1", "Name 4-2", "Name 4-3", "Name 4-4"},
		},
		{name: "traversal_then_prefix_search", expr: "/**/Hey*", want: []any{"Hey, Number Two!"}},
		{
			name: "collectors_after_search",
			expr: "products_hash.*[dimensions.weight==4].(availability.start.date)+(availability.stop.date)",
			want: []any{
				[]any{"2020-03-01", "2020-03-30"},
				[]any{"2020-01-01", "2020-01-31"},
			},
		},
		{name: "descendant_search_in_list", expr: "products_array[dimensions.weight==4].product", want: []any{"fob", "widget"}},
		{
			name: "parent_of_collected_extreme",
			expr: "(products_hash.*.dimensions.weight)[max()][parent(2)].dimensions.weight",
			want: []any{10.0},
		},
		{name: "match_all_filters_by_next_segment", expr: "products_hash.*.availability.start.date", want: []any{"2020-10-10", "2020-03-01", "2020-01-01"}},
		{name: "has_child_array_of_hashes", expr: "lots_of_names.tier1.tier2.list_of_named_objects[has_child(tag)].name", want: []any{"Name 4-1"}},
		{name: "has_child_inverted", expr: "lots_of_names.tier1.tier2.list_of_named_objects[!has_child(tag)].name", want: []any{"Name 4-2", "Name 4-3", "Name 4-4"}},
		{name: "has_child_scalar_list", expr: "disabled_steps[has_child(3)]", want: []any{[]any{2.0, 3.0}}},
		{name: "name_of_matches", expr: "squads[.>=charlie][name()]", want: []any{"charlie", "delta"}},
		{name: "name_of_index", expr: "disabled_steps[1][name()]", want: []any{1.0}},
		{name: "parent_default", expr: "squads.alpha[parent()][name()]", want: []any{"squads"}},
		{name: "parent_zero", expr: "squads.alpha[parent(0)]", want: []any{1.1}},
		{name: "max_of_array_of_hashes", expr: "products_array[max(product)].product", want: []any{"widget"}},
		{name: "min_of_array_of_hashes", expr: "products_array[min(product)].product", want: []any{"doodad"}},
		{name: "max_of_scalar_list", expr: "disabled_steps[max()]", want: []any{3.0}},
		{name: "inverted_min", expr: "squads[!min()]", want: []any{2.2, 3.3, 4.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, fixture)
			got := values(t, p, tt.expr, GetOptions{MustExist: true})
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGet_TranslatedPath(t *testing.T) {
	p := newProcessor(t, fixture)

	var paths []string
	for c, err := range p.GetText("array_of_hashes[step=2].name", ypath.Auto, GetOptions{MustExist: true}) {
		require.NoError(t, err)
		paths = append(paths, c.Path.String())
	}
	require.Equal(t, []string{"array_of_hashes[1].name"}, paths)

	paths = nil
	for c, err := range p.GetText("/squads/*", ypath.Auto, GetOptions{MustExist: true}) {
		require.NoError(t, err)
		paths = append(paths, c.Path.String())
	}
	require.Equal(t, []string{"/squads/alpha", "/squads/bravo", "/squads/charlie", "/squads/delta"}, paths)
}

func TestGet_Ancestry(t *testing.T) {
	p := newProcessor(t, fixture)
	nodes, err := p.Nodes(ypath.MustParse("lots_of_names.tier1.name", ypath.Dot), GetOptions{MustExist: true})
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	chain := nodes[0].Ancestry()
	require.Len(t, chain, 3)
	require.True(t, chain[0].IsRoot())
	require.Equal(t, "lots_of_names.tier1", chain[2].Path.String())
	require.Equal(t, 3, nodes[0].Depth())
}

func TestGet_NotFound(t *testing.T) {
	p := newProcessor(t, fixture)

	err := getErr(p, "squads.echo", GetOptions{MustExist: true})
	require.ErrorIs(t, err, ErrNotFound)

	err = getErr(p, "(squads.echo)", GetOptions{})
	require.ErrorIs(t, err, ErrNotFound, "empty collectors fail closed")
}

func TestGet_StructureMismatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		expr string
		opts GetOptions
	}{
		{name: "key_below_scalar", src: "a: scalar\n", expr: "a.child", opts: GetOptions{MustExist: true}},
		{name: "index_below_scalar", src: "a: scalar\n", expr: "a[0]", opts: GetOptions{MustExist: true}},
		{name: "create_below_scalar", src: "a: scalar\n", expr: "a.child"},
		{name: "index_on_mapping", src: "a:\n  b: 1\n", expr: "a[0]", opts: GetOptions{MustExist: true}},
		{name: "index_on_set", src: "s: !!set\n  ? alpha\n  ? beta\n", expr: "s[0]", opts: GetOptions{MustExist: true}},
		{name: "non_integer_key_on_list", src: "l:\n  - 1\n", expr: "l.foo"},
		{name: "anchor_key_on_mapping", src: "m:\n  a: 1\n", expr: "m[&x]"},
		{name: "parent_above_root", src: "a:\n  b: 1\n", expr: "a.b[parent(5)]", opts: GetOptions{MustExist: true}},
		{name: "has_child_on_scalar", src: "a: 1\n", expr: "a[has_child(b)]", opts: GetOptions{MustExist: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, tt.src)
			err := getErr(p, tt.expr, tt.opts)
			require.ErrorIs(t, err, ErrStructureMismatch)

			var pe *PathError
			require.ErrorAs(t, err, &pe)
			require.NotEmpty(t, pe.Path)
		})
	}
}

func TestGet_MalformedKeywordUse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		expr string
	}{
		{name: "max_array_of_hashes_without_key", src: "l:\n  - a: 1\n  - a: 2\n", expr: "l[max()]"},
		{name: "max_scalar_list_with_key", src: "l:\n  - 1\n  - 2\n", expr: "l[max(a)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, tt.src)
			require.ErrorIs(t, getErr(p, tt.expr, GetOptions{MustExist: true}), ypath.ErrMalformedExpression)
		})
	}
}

func TestSetMembership(t *testing.T) {
	p := newProcessor(t, "s: !!set\n  ? alpha\n  ? beta\n")
	require.Equal(t, []any{"beta"}, values(t, p, "s.beta", GetOptions{MustExist: true}))
	require.Equal(t, []any{"alpha"}, values(t, p, "s[.^al]", GetOptions{MustExist: true}))
	require.Equal(t, []any{"alpha", "beta"}, values(t, p, "s.*", GetOptions{MustExist: true}))
}

func TestMergeKeysAreVisible(t *testing.T) {
	p := newProcessor(t, `base: &base
  x: 1
  y: 2
child:
  <<: *base
  y: 3
`)
	require.Equal(t, []any{1.0}, values(t, p, "child.x", GetOptions{MustExist: true}))
	require.Equal(t, []any{3.0, 1.0}, values(t, p, "child.*", GetOptions{MustExist: true}))
	require.Equal(t, []any{map[string]any{"x": 1.0, "y": 2.0}}, values(t, p, "child[&base]", GetOptions{MustExist: true}))
}

func TestCollectorAlgebra(t *testing.T) {
	const src = `list1: [1, 2, 3]
list2: [4, 5, 6]
exclude: [3, 4]
`
	tests := []struct {
		expr string
		want []any
	}{
		{expr: "(list1)+(list2)", want: []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}},
		{expr: "(list1)-(exclude)", want: []any{1.0, 2.0}},
		{expr: "(list1)+(list2)-(exclude)", want: []any{1.0, 2.0, 5.0, 6.0}},
		{expr: "((list1)+(list2))-(exclude)", want: []any{1.0, 2.0, 5.0, 6.0}},
		{expr: "(list1)+((list2)-(exclude))", want: []any{1.0, 2.0, 3.0, 5.0, 6.0}},
		{expr: "(list1)&(exclude)", want: []any{3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p := newProcessor(t, src)
			got := values(t, p, tt.expr, GetOptions{MustExist: true})
			require.Equal(t, []any{tt.want}, got)
		})
	}
}

func TestSearchNumericCoercion(t *testing.T) {
	p := newProcessor(t, "temps: [32, 0, 110, 100, 72, 68, 114, 34, 36]\n")

	require.Equal(t, []any{110.0, 100.0, 114.0}, values(t, p, "temps[. >= 100]", GetOptions{MustExist: true}))
	require.Equal(t, []any{[]any{110.0, 100.0}}, values(t, p, "(temps[. >= 100]) - (temps[. > 110])", GetOptions{MustExist: true}))
}

func TestSearchDescendants(t *testing.T) {
	const src = `items:
  - name: a
    tags: [x, y]
  - name: b
    tags: [y]
meta:
  tags: [x, y]
`
	tests := []struct {
		expr string
		want []any
	}{
		{expr: "items[tags.*=x].name", want: []any{"a"}},
		{expr: "items[tags.*=y].name", want: []any{"b"}},
		{expr: "meta[tags.*=y].tags[0]", want: []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p := newProcessor(t, src)
			require.Equal(t, tt.want, values(t, p, tt.expr, GetOptions{MustExist: true}))
		})
	}

	p := newProcessor(t, src)
	require.ErrorIs(t, getErr(p, "meta[tags.*=z]", GetOptions{MustExist: true}), ErrNotFound)
}

func TestExtremumTies(t *testing.T) {
	p := newProcessor(t, "a: 1.1\nb: 2.2\nc: 2.2\n")

	require.Equal(t, []any{2.2, 2.2}, values(t, p, "[max()]", GetOptions{MustExist: true}))
	require.Equal(t, []any{"b", "c"}, values(t, p, "[max()][name()]", GetOptions{MustExist: true}))
	require.Equal(t, []any{"a"}, values(t, p, "[min()][name()]", GetOptions{MustExist: true}))
	require.Equal(t, []any{"a"}, values(t, p, "[!max()][name()]", GetOptions{MustExist: true}))

	p = newProcessor(t, "m:\n  x: {v: 3}\n  y: {v: 1}\n  z: {v: 1}\n")
	require.Equal(t, []any{"y", "z"}, values(t, p, "m[min(v)][name()]", GetOptions{MustExist: true}))
	require.ErrorIs(t, getErr(p, "m.x[max(v)]", GetOptions{MustExist: true}), ErrStructureMismatch)
}

func TestUniqueAndDistinct(t *testing.T) {
	p := newProcessor(t, "vals: [1, 2, 2, 3, 3, 3, 4]\n")

	tests := []struct {
		expr string
		want []any
	}{
		{expr: "vals[unique()]", want: []any{1.0, 4.0}},
		{expr: "vals[!unique()]", want: []any{2.0, 2.0, 3.0, 3.0, 3.0}},
		{expr: "vals[distinct()]", want: []any{1.0, 2.0, 3.0, 4.0}},
		{expr: "vals[!distinct()]", want: []any{2.0, 3.0, 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			require.Equal(t, tt.want, values(t, p, tt.expr, GetOptions{MustExist: true}))
		})
	}
}

func TestTraversal(t *testing.T) {
	t.Run("repeating_traversals", func(t *testing.T) {
		p := newProcessor(t, fixture)
		count := 0
		var err error
		for c, e := range p.GetText("**.**", ypath.Auto, GetOptions{MustExist: true}) {
			if e != nil {
				err = e
				break
			}
			if c != nil {
				count++
			}
		}
		require.ErrorIs(t, err, ErrRecursion)
		require.Zero(t, count)
	})

	t.Run("null_document", func(t *testing.T) {
		p := New(yamlnode.NewDocument(yamlnode.NewNull()))
		nodes, err := p.Nodes(ypath.MustParse("**", ypath.Dot), GetOptions{MustExist: true})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.True(t, nodes[0].Node.IsNull())
	})

	t.Run("terminal_pre_order", func(t *testing.T) {
		p := newProcessor(t, "a:\n  b: 1\n  c:\n    - 2\n")
		got := values(t, p, "a.**", GetOptions{MustExist: true})
		require.Equal(t, []any{
			map[string]any{"b": 1.0, "c": []any{2.0}},
			1.0,
			[]any{2.0},
			2.0,
		}, got)
	})

	t.Run("self_reference", func(t *testing.T) {
		doc := yamlnode.NewDocument(yamlnode.NewMapping())
		loop := yamlnode.NewMapping()
		loop.Anchor = "loop"
		loop.Put("self", loop)
		doc.Root.Put("loop", loop)
		p := New(doc)

		nodes, err := p.Nodes(ypath.MustParse("**", ypath.Dot), GetOptions{MustExist: true})
		require.NoError(t, err)
		require.Len(t, nodes, 2)
	})
}

func TestGet_EarlyStop(t *testing.T) {
	p := newProcessor(t, fixture)
	path := ypath.MustParse("squads.*", ypath.Dot)
	count := 0
	for _, err := range p.Get(path, GetOptions{MustExist: true}) {
		require.NoError(t, err)
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestGet_Ensure(t *testing.T) {
	t.Run("deep_path", func(t *testing.T) {
		p := newProcessor(t, "existing: value\n")
		got := values(t, p, "does.not.previously.exist[7]", GetOptions{Default: yamlnode.NewString("Huzzah!")})
		require.Equal(t, []any{"Huzzah!"}, got)

		root := p.Document().Root
		does, _ := root.Lookup("does")
		require.Equal(t, yamlnode.Mapping, does.Kind)
		not, _ := does.Lookup("not")
		require.Equal(t, yamlnode.Mapping, not.Kind)
		previously, _ := not.Lookup("previously")
		exist, _ := previously.Lookup("exist")
		require.Equal(t, yamlnode.Sequence, exist.Kind)
		require.Len(t, exist.Items, 8)
		require.True(t, exist.Items[0].IsNull())
		require.Equal(t, "Huzzah!", exist.Items[7].Text())

		// The created path now exists.
		require.Equal(t, []any{"Huzzah!"}, values(t, p, "does.not.previously.exist[7]", GetOptions{MustExist: true}))
	})

	t.Run("anchored_append", func(t *testing.T) {
		p := newProcessor(t, "list:\n  - a\n")
		got := values(t, p, "list[&fresh]", GetOptions{Default: yamlnode.NewString("b")})
		require.Equal(t, []any{"b"}, got)

		node, ok := p.Document().Anchor("fresh")
		require.True(t, ok)
		require.Equal(t, "b", node.Text())
	})

	t.Run("null_becomes_container", func(t *testing.T) {
		p := newProcessor(t, "a:\n")
		got := values(t, p, "a.b", GetOptions{Default: yamlnode.NewInt(1)})
		require.Equal(t, []any{1.0}, got)
		require.Equal(t, map[string]any{"a": map[string]any{"b": 1.0}}, yamlnode.Interface(p.Document().Root))
	})

	t.Run("search_creates_nothing", func(t *testing.T) {
		p := newProcessor(t, "squads:\n  alpha: 1\n")
		require.Empty(t, values(t, p, "squads[.=nope]", GetOptions{}))
		require.Equal(t, map[string]any{"squads": map[string]any{"alpha": 1.0}}, yamlnode.Interface(p.Document().Root))
	})
}

func TestSet(t *testing.T) {
	t.Run("alias_consistency", func(t *testing.T) {
		p := newProcessor(t, `anchored: &A original
first: *A
list:
  - *A
`)
		require.NoError(t, p.SetText("list[0]", ypath.Auto, "changed", SetOptions{}))

		root := p.Document().Root
		anchored, _ := root.Lookup("anchored")
		first, _ := root.Lookup("first")
		list, _ := root.Lookup("list")
		require.Same(t, anchored, first)
		require.Same(t, anchored, list.Items[0])
		require.Equal(t, "changed", anchored.Text())
		require.Equal(t, "A", anchored.Anchor)
	})

	t.Run("format", func(t *testing.T) {
		p := newProcessor(t, "a: 1\n")
		require.NoError(t, p.SetText("a", ypath.Auto, "2.50", SetOptions{Format: yamlnode.FormatFloat}))
		require.Equal(t, []any{2.5}, values(t, p, "a", GetOptions{MustExist: true}))

		err := p.SetText("a", ypath.Auto, "abc", SetOptions{Format: yamlnode.FormatInt})
		require.ErrorIs(t, err, yamlnode.ErrValue)
	})

	t.Run("slice_members", func(t *testing.T) {
		p := newProcessor(t, "l: [1, 2, 3]\n")
		require.NoError(t, p.SetText("l[0:2]", ypath.Auto, "9", SetOptions{MustExist: true}))
		require.Equal(t, []any{[]any{9.0, 9.0, 3.0}}, values(t, p, "l", GetOptions{MustExist: true}))
	})

	t.Run("must_exist", func(t *testing.T) {
		p := newProcessor(t, "a: 1\n")
		require.ErrorIs(t, p.SetText("b", ypath.Auto, "2", SetOptions{MustExist: true}), ErrNotFound)
	})

	t.Run("creates_missing", func(t *testing.T) {
		p := newProcessor(t, "a: 1\n")
		require.NoError(t, p.SetText("b.c", ypath.Auto, "2", SetOptions{}))
		require.Equal(t, []any{2.0}, values(t, p, "b.c", GetOptions{MustExist: true}))
	})

	t.Run("collector_results_are_read_only", func(t *testing.T) {
		p := newProcessor(t, fixture)
		err := p.SetText("(disabled_steps)[0]", ypath.Auto, "5", SetOptions{MustExist: true})
		require.ErrorIs(t, err, ErrStructureMismatch)
		require.ErrorContains(t, err, "Cannot write to Collector results")
	})

	t.Run("merge_source_requires_mapping", func(t *testing.T) {
		const src = "base: &base\n  x: 1\nchild:\n  <<: *base\n  y: 2\n"
		for _, expr := range []string{"base", "child[&base]"} {
			p := newProcessor(t, src)
			err := p.SetText(expr, ypath.Auto, "flat", SetOptions{MustExist: true})
			require.ErrorIs(t, err, ErrStructureMismatch, expr)
			require.Equal(t, []any{1.0}, values(t, p, "child.x", GetOptions{MustExist: true}), expr)
		}
	})

	t.Run("null_document", func(t *testing.T) {
		p := New(yamlnode.NewDocument(nil))
		require.NoError(t, p.SetText("a.b", ypath.Auto, "1", SetOptions{}))
		require.True(t, p.Document().IsNull())
		require.Empty(t, values(t, p, "a", GetOptions{}))
	})
}

func TestRename(t *testing.T) {
	p := newProcessor(t, "squads:\n  alpha: 1\n  bravo: 2\n")

	err := p.Rename(ypath.MustParse("squads.alpha", ypath.Dot), "bravo")
	require.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, p.Rename(ypath.MustParse("squads.alpha", ypath.Dot), "aleph"))
	require.Equal(t, []any{"aleph", "bravo"}, values(t, p, "squads.*[name()]", GetOptions{MustExist: true}))

	err = p.SetText("l[0][name()]", ypath.Auto, "x", SetOptions{})
	require.ErrorIs(t, err, ErrStructureMismatch)
}

func TestDelete(t *testing.T) {
	t.Run("search_matches", func(t *testing.T) {
		p := newProcessor(t, fixture)
		removed, err := p.DeleteText("squads[.>=charlie]", ypath.Auto)
		require.NoError(t, err)
		require.Len(t, removed, 2)
		require.Equal(t, []any{map[string]any{"alpha": 1.1, "bravo": 2.2}}, values(t, p, "squads", GetOptions{MustExist: true}))
	})

	t.Run("list_elements_in_reverse", func(t *testing.T) {
		p := newProcessor(t, "l: [1, 2, 3, 4]\n")
		_, err := p.DeleteText("l[.<3]", ypath.Auto)
		require.NoError(t, err)
		require.Equal(t, []any{[]any{3.0, 4.0}}, values(t, p, "l", GetOptions{MustExist: true}))
	})

	t.Run("set_member", func(t *testing.T) {
		p := newProcessor(t, "s: !!set\n  ? alpha\n  ? beta\n")
		_, err := p.DeleteText("s.alpha", ypath.Auto)
		require.NoError(t, err)
		require.Equal(t, []any{[]any{"beta"}}, values(t, p, "s", GetOptions{MustExist: true}))
	})

	t.Run("merge_source", func(t *testing.T) {
		p := newProcessor(t, "base: &base\n  x: 1\nchild:\n  <<: *base\n  y: 2\n")
		_, err := p.DeleteText("child[&base]", ypath.Auto)
		require.NoError(t, err)
		require.Equal(t, []any{map[string]any{"y": 2.0}}, values(t, p, "child", GetOptions{MustExist: true}))
	})

	t.Run("document_root", func(t *testing.T) {
		p := newProcessor(t, "a: 1\n")
		_, err := p.Delete(ypath.Root(ypath.Dot))
		require.ErrorIs(t, err, ErrStructureMismatch)
		require.ErrorContains(t, err, "Refusing to delete the entire document!")
	})
}

func TestAlias(t *testing.T) {
	t.Run("generated_name", func(t *testing.T) {
		p := newProcessor(t, "a: 1\nb: 2\n")
		require.NoError(t, p.Alias(ypath.MustParse("b", ypath.Dot), ypath.MustParse("a", ypath.Dot), ""))

		root := p.Document().Root
		a, _ := root.Lookup("a")
		b, _ := root.Lookup("b")
		require.Same(t, a, b)
		require.Equal(t, "a", a.Anchor)
	})

	t.Run("duplicate_name", func(t *testing.T) {
		p := newProcessor(t, "a: &taken 1\nb: 2\nc: 3\n")
		err := p.Alias(ypath.MustParse("c", ypath.Dot), ypath.MustParse("b", ypath.Dot), "taken")
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("multiple_anchors", func(t *testing.T) {
		p := newProcessor(t, "a: 1\nb: 2\nc: 3\n")
		err := p.Alias(ypath.MustParse("c", ypath.Dot), ypath.MustParse("*", ypath.Dot), "")
		require.ErrorIs(t, err, ErrStructureMismatch)
	})
}

func TestMergeKey(t *testing.T) {
	p := newProcessor(t, "base:\n  x: 1\ntarget:\n  y: 2\nscalar: 3\n")

	require.NoError(t, p.MergeKey(ypath.MustParse("target", ypath.Dot), ypath.MustParse("base", ypath.Dot), ""))
	require.NoError(t, p.MergeKey(ypath.MustParse("target", ypath.Dot), ypath.MustParse("base", ypath.Dot), ""))

	target, _ := p.Document().Root.Lookup("target")
	require.Len(t, target.Merge, 1)
	require.Equal(t, "base", target.Merge[0].Anchor)
	require.Equal(t, []any{1.0}, values(t, p, "target.x", GetOptions{MustExist: true}))

	err := p.MergeKey(ypath.MustParse("scalar", ypath.Dot), ypath.MustParse("base", ypath.Dot), "")
	require.ErrorIs(t, err, ErrStructureMismatch)
}

func TestTag(t *testing.T) {
	p := newProcessor(t, "a: &keep 1\n")
	require.NoError(t, p.Tag(ypath.MustParse("a", ypath.Dot), "custom"))

	a, _ := p.Document().Root.Lookup("a")
	require.Equal(t, "!custom", a.Tag)
	require.Equal(t, "keep", a.Anchor)

	require.ErrorIs(t, p.Tag(ypath.MustParse("missing", ypath.Dot), "x"), ErrNotFound)
}

func TestExists(t *testing.T) {
	p := newProcessor(t, fixture)

	ok, err := p.Exists(ypath.MustParse("squads.alpha", ypath.Dot))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = p.Exists(ypath.MustParse("squads.echo", ypath.Dot))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = p.Exists(ypath.MustParse("**.**", ypath.Dot))
	require.True(t, errors.Is(err, ErrRecursion))
}
