// Package serialize implements the element/attribute wire format and
// the encode/decode pairs for block graphs (flow.Block trees),
// varnodes, and symbol scopes. The schema is an XML-like element
// stream with typed attributes; as with a hand-rolled LEB128/section
// codec, no example in the pack targets a nested named-element wire
// format,
// so the tokenizer here is hand-written over the standard library
// rather than built on a third-party parser (see DESIGN.md).
package serialize

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/decompcore/pcodeir/errs"
)

// Attr is one name="value" pair. All integers are written as unsigned
// hex by convention.
type Attr struct {
	Key   string
	Value string
}

// Element is one node of the wire stream: a name, an ordered attribute
// list, and ordered children. Encode/decode pairs for higher-level
// objects (blocks, symbols, scopes) build and walk trees of these.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// NewElement returns an empty element named name.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// SetAttr sets (or replaces) a string attribute.
func (e *Element) SetAttr(key, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

// SetAttrHex sets an unsigned integer attribute, written as hex.
func (e *Element) SetAttrHex(key string, v uint64) {
	e.SetAttr(key, fmt.Sprintf("%#x", v))
}

// SetAttrInt sets a signed integer attribute, written in decimal (used
// for case values and depths, which may be negative (signedness is
// attribute-specific).
func (e *Element) SetAttrInt(key string, v int64) {
	e.SetAttr(key, strconv.FormatInt(v, 10))
}

// SetAttrBool sets a boolean attribute, present (as "1") only when
// true — the optional boolean attributes ("persists|addrtied|unaff|
// input|volatile|grp") are omitted rather than written as "0" when
// false.
func (e *Element) SetAttrBool(key string, v bool) {
	if v {
		e.SetAttr(key, "1")
	}
}

// Attr returns a string attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrHex parses an unsigned hex attribute.
func (e *Element) AttrHex(key string) (uint64, bool) {
	v, ok := e.Attr(key)
	if !ok {
		return 0, false
	}
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	n, err := strconv.ParseUint(v, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AttrInt parses a signed decimal attribute.
func (e *Element) AttrInt(key string) (int64, bool) {
	v, ok := e.Attr(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AttrBool reports whether a boolean attribute is present and "1".
func (e *Element) AttrBool(key string) bool {
	v, ok := e.Attr(key)
	return ok && v == "1"
}

// AddChild appends c to e's child list.
func (e *Element) AddChild(c *Element) {
	e.Children = append(e.Children, c)
}

// FindChild returns the first child named name.
func (e *Element) FindChild(name string) (*Element, bool) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FindChildren returns every child named name, in document order.
func (e *Element) FindChildren(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Encode writes e and its subtree to w, one element per indent level.
// A decoder that encounters an unknown element must open-and-skip
// rather than abort ; that tolerance lives in Decode, not
// here — Encode always emits a well-formed, fully nested stream.
func Encode(w io.Writer, e *Element) error {
	bw := bufio.NewWriter(w)
	if err := encodeIndent(bw, e, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func encodeIndent(w *bufio.Writer, e *Element, depth int) error {
	pad := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s<%s", pad, e.Name); err != nil {
		return err
	}
	for _, a := range e.Attrs {
		if _, err := fmt.Fprintf(w, " %s=%q", a.Key, a.Value); err != nil {
			return err
		}
	}
	if len(e.Children) == 0 {
		_, err := fmt.Fprintf(w, "/>\n")
		return err
	}
	if _, err := fmt.Fprintf(w, ">\n"); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := encodeIndent(w, c, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</%s>\n", pad, e.Name)
	return err
}

// Decode parses one top-level element (and its subtree) from r.
func Decode(r io.Reader) (*Element, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &parser{s: string(raw)}
	p.skipSpace()
	if p.i >= len(p.s) {
		return nil, errs.NewDecoder("", "empty input")
	}
	return p.parseElement()
}

type parser struct {
	s string
	i int
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func (p *parser) skipSpace() {
	for p.i < len(p.s) && isSpace(p.s[p.i]) {
		p.i++
	}
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) parseElement() (*Element, error) {
	if p.i >= len(p.s) || p.s[p.i] != '<' {
		return nil, errs.NewDecoder("", "expected '<' at offset %d", p.i)
	}
	p.i++
	start := p.i
	for p.i < len(p.s) && isNameByte(p.s[p.i]) {
		p.i++
	}
	if p.i == start {
		return nil, errs.NewDecoder("", "expected element name at offset %d", start)
	}
	e := NewElement(p.s[start:p.i])

	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, errs.NewDecoder(e.Name, "unterminated start tag")
		}
		if p.s[p.i] == '/' {
			if p.i+1 >= len(p.s) || p.s[p.i+1] != '>' {
				return nil, errs.NewDecoder(e.Name, "malformed self-close")
			}
			p.i += 2
			return e, nil
		}
		if p.s[p.i] == '>' {
			p.i++
			break
		}
		key, val, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		e.SetAttr(key, val)
	}

	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, errs.NewDecoder(e.Name, "missing closing tag")
		}
		if p.s[p.i] == '<' && p.i+1 < len(p.s) && p.s[p.i+1] == '/' {
			p.i += 2
			closeStart := p.i
			for p.i < len(p.s) && isNameByte(p.s[p.i]) {
				p.i++
			}
			if p.s[closeStart:p.i] != e.Name {
				return nil, errs.NewDecoder(e.Name, "mismatched closing tag %q", p.s[closeStart:p.i])
			}
			p.skipSpace()
			if p.i >= len(p.s) || p.s[p.i] != '>' {
				return nil, errs.NewDecoder(e.Name, "malformed closing tag")
			}
			p.i++
			return e, nil
		}
		child, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		e.AddChild(child)
	}
}

func (p *parser) parseAttr() (string, string, error) {
	start := p.i
	for p.i < len(p.s) && isNameByte(p.s[p.i]) {
		p.i++
	}
	if p.i == start {
		return "", "", errs.NewDecoder("", "expected attribute name at offset %d", start)
	}
	key := p.s[start:p.i]
	p.skipSpace()
	if p.i >= len(p.s) || p.s[p.i] != '=' {
		return "", "", errs.NewDecoder(key, "expected '=' after attribute name")
	}
	p.i++
	p.skipSpace()
	if p.i >= len(p.s) || p.s[p.i] != '"' {
		return "", "", errs.NewDecoder(key, "expected quoted attribute value")
	}
	p.i++
	valStart := p.i
	for p.i < len(p.s) && p.s[p.i] != '"' {
		p.i++
	}
	if p.i >= len(p.s) {
		return "", "", errs.NewDecoder(key, "unterminated attribute value")
	}
	val := p.s[valStart:p.i]
	p.i++
	return key, val, nil
}
