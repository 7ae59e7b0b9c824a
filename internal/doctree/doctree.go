package doctree

// Value is one of Scalar, List, or *Node.
type Value interface {
	isValue()
}

// Scalar is a text-only element or attribute value.
type Scalar string

// List holds every occurrence of a repeated tag, in document order.
type List []Value

func (Scalar) isValue() {}
func (List) isValue()   {}
func (*Node) isValue()  {}

// Field is a single key of a Node. Fields keep the order in which their key
// first appeared in the source document.
type Field struct {
	Key   string
	Value Value
}

// Node is a mapping from tag name to Value. A node that carries character
// data alongside attributes or children is a "wrapped scalar": HasText is set
// and Text holds the trimmed content.
type Node struct {
	ID      int // pre-order index assigned at parse time; root is 0
	Name    string
	Fields  []Field
	Text    string
	HasText bool
}

// Get returns the value stored under key, matching exactly.
func (n *Node) Get(key string) (Value, bool) {
	if n == nil {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the node's own keys in enumeration order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Tree is the root of a parsed document. Root is a synthetic node with a
// single field holding the document element.
type Tree struct {
	Root      *Node
	NodeCount int
}

// Flatten returns every node reachable from the root in pre-order: a node
// comes before its children, children follow field order, and list-valued
// fields are expanded element by element.
func (t *Tree) Flatten() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return Flatten(t.Root)
}

// Flatten walks the subtree rooted at n. The walk uses an explicit stack so
// document depth never grows the goroutine stack.
func Flatten(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, 64)
	stack := []*Node{n}
	var children []*Node
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)

		children = children[:0]
		for _, f := range cur.Fields {
			children = appendNodes(children, f.Value)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

func appendNodes(dst []*Node, v Value) []*Node {
	switch v := v.(type) {
	case *Node:
		if v != nil {
			dst = append(dst, v)
		}
	case List:
		for _, item := range v {
			dst = appendNodes(dst, item)
		}
	}
	return dst
}
