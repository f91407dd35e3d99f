package llm

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `{
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {"type": "string", "enum": ["a", "b"]},
    "count": {"type": "integer"}
  }
}`

func TestSchemaValidate(t *testing.T) {
	s := MustSchema(testSchema)
	if err := s.Validate(`{"kind":"a","count":2}`); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	err := s.Validate(`{"kind":"z"}`)
	if err == nil || !strings.Contains(err.Error(), "failed validation") {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if err := s.Validate(`not json`); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestDecodeValidated(t *testing.T) {
	s := MustSchema(testSchema)
	var out struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	}
	if err := DecodeValidated("here you go: {\"kind\":\"b\",\"count\":3}", s, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != "b" || out.Count != 3 {
		t.Fatalf("unexpected decode %+v", out)
	}
	if err := DecodeValidated("nothing", s, &out); !errors.Is(err, ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}
	if err := DecodeValidated(`{"count":1}`, s, &out); err == nil {
		t.Fatal("expected missing required field to fail")
	}
}

func TestMustSchemaPanicsOnInvalidSchema(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustSchema(`{"type": 12}`)
}
