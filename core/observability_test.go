package core

import (
	"reflect"
	"testing"
)

func TestCloneFieldsIsolatesMutation(t *testing.T) {
	original := map[string]any{"job_id": "j1", "topic": "orders/create"}
	copied := CloneFields(original)
	copied["topic"] = "mutated"

	if original["topic"] != "orders/create" {
		t.Fatalf("expected original map untouched, got %v", original["topic"])
	}

	if empty := CloneFields(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil map for nil input, got %#v", empty)
	}
}

func TestFlattenFieldsDeterministicOrder(t *testing.T) {
	fields := map[string]any{"b": 2, "a": 1, "c": 3}
	got := FlattenFields(fields)
	want := []any{"a", 1, "b", 2, "c", 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected sorted key/value args, got %#v", got)
	}

	if out := FlattenFields(nil); out != nil {
		t.Fatalf("expected nil args for empty fields, got %#v", out)
	}
}
