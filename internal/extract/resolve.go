package extract

import (
	"github.com/dgallion1/creditgest/internal/doctree"
)

// FindFirstByTag scans nodes in document order and returns the first
// non-empty primitive stored under any of the candidate tags.
//
// The earliest node holding any candidate wins regardless of where that
// candidate sits in the list. Within one node, keys are tried in field order.
func FindFirstByTag(nodes []*doctree.Node, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	want := normalizedSet(candidates)
	for _, n := range nodes {
		for _, f := range n.Fields {
			if _, ok := want[NormalizeKey(f.Key)]; !ok {
				continue
			}
			if s, ok := PickFirstPrimitive(f.Value); ok {
				return s, true
			}
		}
	}
	return "", false
}

// PickFromNode looks only at the direct keys of n. Unlike FindFirstByTag the
// candidate order decides: the first alias present with a value wins.
func PickFromNode(n *doctree.Node, candidates []string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, c := range candidates {
		nc := NormalizeKey(c)
		for _, f := range n.Fields {
			if NormalizeKey(f.Key) != nc {
				continue
			}
			if s, ok := PickFirstPrimitive(f.Value); ok {
				return s, true
			}
		}
	}
	return "", false
}

// firstChildNode returns the first element stored under key if it is a node.
func firstChildNode(n *doctree.Node, key string) *doctree.Node {
	if n == nil || key == "" {
		return nil
	}
	nk := NormalizeKey(key)
	for _, k := range n.Keys() {
		if NormalizeKey(k) != nk {
			continue
		}
		v, _ := n.Get(k)
		if l, ok := v.(doctree.List); ok {
			if len(l) == 0 {
				return nil
			}
			v = l[0]
		}
		child, _ := v.(*doctree.Node)
		return child
	}
	return nil
}

func normalizedSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[NormalizeKey(k)] = struct{}{}
	}
	return set
}
