package models

// Typed component lookups. T is matched by type assertion, so it may be a
// concrete component pointer type or any capability interface.

// GetComponent returns the first component of g matching T in attachment order.
func GetComponent[T any](g *GameObject) (T, bool) {
	for _, c := range g.components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// GetComponents returns every component of g matching T in attachment order.
func GetComponents[T any](g *GameObject) []T {
	return appendComponents[T](nil, g)
}

// GetComponentInChildren searches the subtree below g depth-first, pre-order,
// excluding g itself.
func GetComponentInChildren[T any](g *GameObject) (T, bool) {
	for _, child := range g.children {
		if v, ok := GetComponent[T](child); ok {
			return v, true
		}
		if v, ok := GetComponentInChildren[T](child); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// GetComponentsInChildren collects matches from the subtree below g in
// depth-first pre-order, excluding g itself.
func GetComponentsInChildren[T any](g *GameObject) []T {
	var out []T
	for _, child := range g.children {
		out = appendComponents[T](out, child)
		out = append(out, GetComponentsInChildren[T](child)...)
	}
	return out
}

// GetComponentInParent walks the ancestors of g from the nearest to the root.
func GetComponentInParent[T any](g *GameObject) (T, bool) {
	for n := g.parent; n != nil; n = n.parent {
		if v, ok := GetComponent[T](n); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// GetComponentsInParent collects matches from the nearest ancestor to the root.
func GetComponentsInParent[T any](g *GameObject) []T {
	var out []T
	for n := g.parent; n != nil; n = n.parent {
		out = appendComponents[T](out, n)
	}
	return out
}

// HasComponent reports whether g carries a component matching T.
func HasComponent[T any](g *GameObject) bool {
	_, ok := GetComponent[T](g)
	return ok
}

func appendComponents[T any](out []T, g *GameObject) []T {
	for _, c := range g.components {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
