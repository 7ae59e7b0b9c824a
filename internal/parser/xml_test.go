package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/creditgest/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) *doctree.Tree {
	t.Helper()
	tree, err := NewXMLParser(0, 0).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return tree
}

func TestXMLParser_RootIsNotListWrapped(t *testing.T) {
	tree := parse(t, `<Report><Name>Sagar</Name></Report>`)

	v, ok := tree.Root.Get("Report")
	require.True(t, ok)
	report, ok := v.(*doctree.Node)
	require.True(t, ok, "root element should be a node, got %T", v)

	name, ok := report.Get("Name")
	require.True(t, ok)
	assert.Equal(t, doctree.List{doctree.Scalar("Sagar")}, name)
}

func TestXMLParser_RepeatedChildrenShareOneList(t *testing.T) {
	tree := parse(t, `<R><A>1</A><B>x</B><A>2</A></R>`)
	r, _ := tree.Root.Get("R")
	node := r.(*doctree.Node)

	assert.Equal(t, []string{"A", "B"}, node.Keys())
	a, _ := node.Get("A")
	assert.Equal(t, doctree.List{doctree.Scalar("1"), doctree.Scalar("2")}, a)
}

func TestXMLParser_AttributesMergeAheadOfChildren(t *testing.T) {
	tree := parse(t, `<R><Score type="bureau">750</Score><Acc id="7"><No>1</No></Acc></R>`)
	r, _ := tree.Root.Get("R")
	node := r.(*doctree.Node)

	score, _ := node.Get("Score")
	wrapped := score.(doctree.List)[0].(*doctree.Node)
	assert.True(t, wrapped.HasText)
	assert.Equal(t, "750", wrapped.Text)
	assert.Equal(t, []string{"type"}, wrapped.Keys())

	acc, _ := node.Get("Acc")
	accNode := acc.(doctree.List)[0].(*doctree.Node)
	assert.Equal(t, []string{"id", "No"}, accNode.Keys())
	assert.False(t, accNode.HasText)
}

func TestXMLParser_TrimsTextAndEmptyElementsBecomeEmptyScalars(t *testing.T) {
	tree := parse(t, "<R>\n  <A>  padded  </A>\n  <B/>\n</R>")
	r, _ := tree.Root.Get("R")
	node := r.(*doctree.Node)

	a, _ := node.Get("A")
	assert.Equal(t, doctree.List{doctree.Scalar("padded")}, a)
	b, _ := node.Get("B")
	assert.Equal(t, doctree.List{doctree.Scalar("")}, b)
	assert.False(t, node.HasText, "whitespace between children is not text content")
}

func TestXMLParser_AssignsPreOrderIDs(t *testing.T) {
	tree := parse(t, `<R><A><X>1</X></A><B><Y>2</Y></B></R>`)
	nodes := tree.Flatten()
	require.Len(t, nodes, 4)
	for i, n := range nodes {
		assert.Equal(t, i, n.ID)
	}
	assert.Equal(t, 4, tree.NodeCount)
	assert.Equal(t, "R", nodes[1].Name)
	assert.Equal(t, "A", nodes[2].Name)
	assert.Equal(t, "B", nodes[3].Name)
}

func TestXMLParser_DecodesDeclaredCharset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><R><City>M\xfcnchen</City></R>"
	tree := parse(t, doc)
	r, _ := tree.Root.Get("R")
	city, _ := r.(*doctree.Node).Get("City")
	assert.Equal(t, doctree.List{doctree.Scalar("München")}, city)
}

func TestXMLParser_ReplacesInvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no declaration", "<R><Name>Jos\xe9</Name></R>"},
		{"declared utf-8", "<?xml version=\"1.0\" encoding=\"UTF-8\"?><R><Name>Jos\xe9</Name></R>"},
		{"bom", "\xef\xbb\xbf<R><Name>Jos\xe9</Name></R>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := parse(t, tc.doc)
			r, _ := tree.Root.Get("R")
			name, _ := r.(*doctree.Node).Get("Name")
			assert.Equal(t, doctree.List{doctree.Scalar("Jos\uFFFD")}, name)
		})
	}
}

func TestXMLParser_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"mismatched tags", `<R><A>1</B></R>`},
		{"unclosed", `<R><A>1</A>`},
		{"text before root", `hello <R/>`},
		{"two roots", `<R/><S/>`},
		{"empty", ``},
		{"whitespace only", "  \n "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewXMLParser(0, 0).Parse(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.True(t, IsStructural(err), "expected structural error, got %v", err)
		})
	}
}

func TestXMLParser_DepthGuard(t *testing.T) {
	doc := strings.Repeat("<a>", 10) + strings.Repeat("</a>", 10)

	_, err := NewXMLParser(5, 0).Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooDeep))

	_, err = NewXMLParser(10, 0).Parse(strings.NewReader(doc))
	assert.NoError(t, err)
}

func TestXMLParser_NodeGuard(t *testing.T) {
	doc := "<R>" + strings.Repeat("<a>1</a>", 20) + "</R>"

	_, err := NewXMLParser(0, 10).Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyNodes))
}
