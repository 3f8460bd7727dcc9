package serialize

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestElementEncodeDecodeRoundTrip(t *testing.T) {
	root := NewElement("block")
	root.SetAttrHex("index", 7)
	root.SetAttrBool("entry", true)
	root.SetAttrBool("dead", false) // omitted on encode

	child := NewElement("edge")
	child.SetAttrInt("rev", -3)
	root.AddChild(child)

	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(root, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.AttrBool("dead") {
		t.Fatalf("expected dead attribute to be omitted, not round-tripped as false")
	}
}

func TestElementSelfClosing(t *testing.T) {
	e := NewElement("leaf")
	e.SetAttr("name", "x")
	var buf bytes.Buffer
	if err := Encode(&buf, e); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := buf.String(), "<leaf name=\"x\"/>\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeMismatchedClosingTag(t *testing.T) {
	_, err := Decode(bytes.NewBufferString(`<a><b></c></a>`))
	if err == nil {
		t.Fatalf("expected an error for mismatched closing tag")
	}
}
