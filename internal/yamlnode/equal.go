package yamlnode

// Equal reports value equality. Scalars compare numerically when either
// side is numeric and the other parses as a number, otherwise textually.
func Equal(a, b *Node) bool {
	return equal(a, b, map[[2]*Node]struct{}{})
}

func equal(a, b *Node, seen map[[2]*Node]struct{}) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return a.IsNull() && b.IsNull()
	}
	if a.Kind != b.Kind {
		return false
	}
	pair := [2]*Node{a, b}
	if _, ok := seen[pair]; ok {
		return true
	}
	seen[pair] = struct{}{}

	switch a.Kind {
	case Scalar:
		return scalarEqual(a, b)
	case Sequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !equal(a.Items[i], b.Items[i], seen) {
				return false
			}
		}
		return true
	case Set:
		if len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for _, p := range a.Pairs {
			if !b.Has(p.Key.Text()) {
				return false
			}
		}
		return true
	case Mapping:
		count := 0
		for p := range a.All() {
			count++
			other, ok := b.Lookup(p.Key.Text())
			if !ok || !equal(p.Value, other, seen) {
				return false
			}
		}
		for range b.All() {
			count--
		}
		return count == 0
	}
	return false
}

func scalarEqual(a, b *Node) bool {
	if a.Type == NullType || b.Type == NullType {
		return a.Type == b.Type
	}
	if a.IsNumeric() || b.IsNumeric() {
		af, aok := a.Float()
		bf, bok := b.Float()
		if aok && bok {
			return af == bf
		}
	}
	return a.Value == b.Value
}
