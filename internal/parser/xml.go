package parser

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/creditgest/internal/doctree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DefaultMaxDepth = 256
	DefaultMaxNodes = 500000
)

// XMLParser builds a Document Tree from a single XML document.
//
// Every child element and attribute is stored as a List, even when it occurs
// once. Attributes are merged into the element's fields ahead of its
// children. An element with only text collapses to a Scalar; an element with
// text plus attributes or children becomes a wrapped-scalar Node.
type XMLParser struct {
	MaxDepth int
	MaxNodes int
}

// NewXMLParser returns a parser with the given guards. Non-positive limits
// fall back to the defaults.
func NewXMLParser(maxDepth, maxNodes int) *XMLParser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &XMLParser{MaxDepth: maxDepth, MaxNodes: maxNodes}
}

type openElement struct {
	node *doctree.Node
	text strings.Builder
}

func (p *XMLParser) Parse(r io.Reader) (*doctree.Tree, error) {
	maxDepth, maxNodes := p.MaxDepth, p.MaxNodes
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	dec := xml.NewDecoder(utf8Input(r))
	dec.CharsetReader = charset.NewReaderLabel

	root := &doctree.Node{}
	var stack []*openElement
	elements := 0
	seenRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapDecodeError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && seenRoot {
				line, _ := dec.InputPos()
				return nil, &SyntaxError{Line: line, Msg: "multiple root elements"}
			}
			if len(stack) >= maxDepth {
				return nil, fmt.Errorf("%w (%d)", ErrTooDeep, maxDepth)
			}
			elements++
			if elements > maxNodes {
				return nil, fmt.Errorf("%w (%d)", ErrTooManyNodes, maxNodes)
			}
			seenRoot = true

			el := &openElement{node: &doctree.Node{Name: t.Name.Local}}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				appendField(el.node, a.Name.Local, doctree.Scalar(strings.TrimSpace(a.Value)))
			}
			stack = append(stack, el)

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(strings.TrimLeft(string(t), "\ufeff")) != "" {
					line, _ := dec.InputPos()
					return nil, &SyntaxError{Line: line, Msg: "text outside root element"}
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)

		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v := closeElement(el)
			if len(stack) == 0 {
				root.Fields = append(root.Fields, doctree.Field{Key: el.node.Name, Value: v})
			} else {
				appendField(stack[len(stack)-1].node, el.node.Name, v)
			}
		}
	}

	if !seenRoot {
		return nil, ErrEmpty
	}
	if len(stack) > 0 {
		return nil, &SyntaxError{Msg: fmt.Sprintf("unclosed element <%s>", stack[len(stack)-1].node.Name)}
	}

	tree := &doctree.Tree{Root: root}
	for i, n := range tree.Flatten() {
		n.ID = i
		tree.NodeCount++
	}
	return tree, nil
}

// declPeek bounds how far into the input the XML declaration is searched.
const declPeek = 512

var encodingDecl = regexp.MustCompile(`^\x{FEFF}?\s*<\?xml[^>]*?\sencoding\s*=\s*["']([^"']+)["']`)

// utf8Input replaces invalid UTF-8 sequences with U+FFFD unless the document
// declares some other encoding, which the decoder's CharsetReader handles.
func utf8Input(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, declPeek)
	head, _ := br.Peek(declPeek)
	if m := encodingDecl.FindSubmatch(head); m != nil && !isUTF8Label(string(m[1])) {
		return br
	}
	return transform.NewReader(br, unicode.UTF8.NewDecoder())
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// closeElement collapses a finished element into its Value.
func closeElement(el *openElement) doctree.Value {
	text := strings.TrimSpace(el.text.String())
	n := el.node
	if len(n.Fields) == 0 {
		return doctree.Scalar(text)
	}
	if text != "" {
		n.Text = text
		n.HasText = true
	}
	return n
}

// appendField pushes v onto the List stored under key, creating the field at
// the end of the node's field order on first sight.
func appendField(n *doctree.Node, key string, v doctree.Value) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			if l, ok := n.Fields[i].Value.(doctree.List); ok {
				n.Fields[i].Value = append(l, v)
				return
			}
			n.Fields[i].Value = doctree.List{n.Fields[i].Value, v}
			return
		}
	}
	n.Fields = append(n.Fields, doctree.Field{Key: key, Value: doctree.List{v}})
}

func wrapDecodeError(err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return &SyntaxError{Line: syn.Line, Msg: syn.Msg}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Msg: "unexpected end of document"}
	}
	// Unknown charset labels and similar decoder failures are still
	// problems with the document, not with the reader.
	if strings.Contains(err.Error(), "charset") || strings.Contains(err.Error(), "encoding") {
		return &SyntaxError{Msg: err.Error()}
	}
	return fmt.Errorf("read document: %w", err)
}
