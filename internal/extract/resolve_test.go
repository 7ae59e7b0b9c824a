package extract

import (
	"strings"
	"testing"

	"github.com/dgallion1/creditgest/internal/doctree"
	"github.com/dgallion1/creditgest/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, doc string) *doctree.Tree {
	t.Helper()
	tree, err := parser.NewXMLParser(0, 0).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return tree
}

func TestFindFirstByTag_DocumentOrderBeatsAliasOrder(t *testing.T) {
	// A has no alias, B holds X, C holds Y. Y is listed first but B comes
	// first in the document.
	tree := parseDoc(t, `<R>
		<A><Other>nothing</Other></A>
		<B><X>from-b</X></B>
		<C><Y>from-c</Y></C>
	</R>`)

	got, ok := FindFirstByTag(tree.Flatten(), []string{"Y", "X"})
	require.True(t, ok)
	assert.Equal(t, "from-b", got)
}

func TestFindFirstByTag_AliasSpellingsMatch(t *testing.T) {
	tree := parseDoc(t, `<R><Details><BUREAU-SCORE>712</BUREAU-SCORE></Details></R>`)
	got, ok := FindFirstByTag(tree.Flatten(), []string{"Bureau_Score"})
	require.True(t, ok)
	assert.Equal(t, "712", got)
}

func TestFindFirstByTag_SkipsEmptyOccurrences(t *testing.T) {
	tree := parseDoc(t, `<R><A><PAN/></A><B><PAN>ABCDE1234F</PAN></B></R>`)
	got, ok := FindFirstByTag(tree.Flatten(), []string{"PAN"})
	require.True(t, ok)
	assert.Equal(t, "ABCDE1234F", got)
}

func TestFindFirstByTag_WrappedScalarAndAttributes(t *testing.T) {
	tree := parseDoc(t, `<R><Score version="3">801</Score><Holder PAN="XYZAB9876C"/></R>`)
	nodes := tree.Flatten()

	score, ok := FindFirstByTag(nodes, []string{"score"})
	require.True(t, ok)
	assert.Equal(t, "801", score)

	pan, ok := FindFirstByTag(nodes, []string{"pan"})
	require.True(t, ok)
	assert.Equal(t, "XYZAB9876C", pan)
}

func TestFindFirstByTag_NotFound(t *testing.T) {
	tree := parseDoc(t, `<R><A>1</A></R>`)
	_, ok := FindFirstByTag(tree.Flatten(), []string{"B"})
	assert.False(t, ok)
	_, ok = FindFirstByTag(tree.Flatten(), nil)
	assert.False(t, ok)
	_, ok = FindFirstByTag(nil, []string{"A"})
	assert.False(t, ok)
}

func TestFindFirstByTag_ContainerKeyWithoutTextIsSkipped(t *testing.T) {
	// Name holds a structure with no text of its own; the search moves on to
	// later nodes.
	tree := parseDoc(t, `<R><Name><Part>x</Part></Name><Person><Name>Asha Rao</Name></Person></R>`)
	got, ok := FindFirstByTag(tree.Flatten(), []string{"Name"})
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", got)
}

func TestPickFromNode_AliasOrderWithinNode(t *testing.T) {
	n := node("SubscriberName", "second", "Subscriber_Name", "first")
	got, ok := PickFromNode(n, []string{"Subscriber_Name", "SubscriberName"})
	require.True(t, ok)
	// Both keys normalize to the same name; the first field carrying it wins.
	assert.Equal(t, "second", got)

	n = node("Lender", "lender", "Bank", "bank")
	got, ok = PickFromNode(n, []string{"Bank", "Lender"})
	require.True(t, ok)
	assert.Equal(t, "bank", got)
}

func TestPickFromNode_DoesNotDescend(t *testing.T) {
	tree := parseDoc(t, `<Acc><Holder><Income_TAX_PAN>ABCDE1234F</Income_TAX_PAN></Holder></Acc>`)
	acc, _ := tree.Root.Get("Acc")
	_, ok := PickFromNode(acc.(*doctree.Node), []string{"Income_TAX_PAN"})
	assert.False(t, ok)
	_, ok = PickFromNode(nil, []string{"x"})
	assert.False(t, ok)
}

func TestFirstChildNode(t *testing.T) {
	tree := parseDoc(t, `<Acc>
		<CAIS_Holder_Details><Surname>Ugle</Surname></CAIS_Holder_Details>
		<CAIS_Holder_Details><Surname>Other</Surname></CAIS_Holder_Details>
		<Account_Number>42</Account_Number>
	</Acc>`)
	acc, _ := tree.Root.Get("Acc")
	n := acc.(*doctree.Node)

	holder := firstChildNode(n, "cais-holder-details")
	require.NotNil(t, holder)
	got, ok := PickFromNode(holder, []string{"Surname"})
	require.True(t, ok)
	assert.Equal(t, "Ugle", got)

	assert.Nil(t, firstChildNode(n, "Account_Number"), "scalar child is not a node")
	assert.Nil(t, firstChildNode(n, "Missing"))
	assert.Nil(t, firstChildNode(n, ""))
	assert.Nil(t, firstChildNode(nil, "Acc"))
}
