package tree

// UpdateFunc computes the replacement for a value addressed by a path.
// found is false when the final key does not exist. Returning write=false
// leaves the tree untouched at that position.
type UpdateFunc func(v any, found bool) (nv any, write bool, err error)

// Update calls fn for every value addressed by p and writes the results back.
// Missing intermediate objects are created only when fn writes beneath them.
//
// Update modifies root in place; callers pass a private copy (see Clone).
// The returned tree must be used instead of root since the root itself may be
// replaced.
func Update(root any, p Path, fn UpdateFunc) (any, error) {
	nv, _, err := update(root, true, p, 0, fn)
	return nv, err
}

func update(node any, found bool, p Path, depth int, fn UpdateFunc) (any, bool, error) {
	if depth == len(p.Segments) {
		nv, write, err := fn(node, found)
		if err != nil || !write {
			return node, false, err
		}

		return nv, true, nil
	}

	seg := p.Segments[depth]

	obj, ok := node.(map[string]any)
	if !ok {
		if node != nil {
			return node, false, &PathError{Path: p.String(), Segment: seg.Name, Index: depth, Err: ErrNotObject}
		}

		obj = map[string]any{}
	}

	child, childFound := obj[seg.Name]

	if seg.IsSlice {
		if !childFound || child == nil {
			return node, false, nil
		}

		arr, ok := child.([]any)
		if !ok {
			return node, false, &PathError{Path: p.String(), Segment: seg.String(), Index: depth, Err: ErrNotArray}
		}

		wrote := false

		for i, elem := range arr {
			ne, w, err := update(elem, true, p, depth+1, fn)
			if err != nil {
				return node, false, err
			}

			if w {
				arr[i] = ne
				wrote = true
			}
		}

		return node, wrote, nil
	}

	nc, wrote, err := update(child, childFound, p, depth+1, fn)
	if err != nil || !wrote {
		return node, false, err
	}

	obj[seg.Name] = nc

	return obj, true, nil
}
