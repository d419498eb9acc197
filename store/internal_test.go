package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeValueCoercions(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    any
		wantErr error
	}{
		{name: "string", in: "s", want: "s"},
		{name: "bool", in: false, want: false},
		{name: "int", in: 7, want: int64(7)},
		{name: "int32", in: int32(7), want: int64(7)},
		{name: "int64", in: int64(7), want: int64(7)},
		{name: "float32", in: float32(1.5), want: 1.5},
		{name: "float64", in: 2.5, want: 2.5},
		{name: "nil", in: nil, want: nil},
		{name: "nested", in: map[string]any{"a": map[string]any{"b": 1}},
			want: map[string]any{"a": map[string]any{"b": int64(1)}}},
		{name: "nil field dropped", in: map[string]any{"a": "x", "b": nil},
			want: map[string]any{"a": "x"}},
		{name: "slice rejected", in: []string{"a"}, wantErr: ErrInvalidValue},
		{name: "struct rejected", in: struct{}{}, wantErr: ErrInvalidValue},
		{name: "nested bad type", in: map[string]any{"a": make(chan int)}, wantErr: ErrInvalidValue},
		{name: "reserved field name", in: map[string]any{"a.b": 1}, wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeValue(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestCopyValueIsDeep(t *testing.T) {
	orig := map[string]any{"a": map[string]any{"b": "x"}}

	copied := copyValue(orig).(map[string]any)
	copied["a"].(map[string]any)["b"] = "mutated"

	if orig["a"].(map[string]any)["b"] != "x" {
		t.Error("copy shares structure with the original")
	}
}

func TestNodeEnsureReportsFirstCreated(t *testing.T) {
	root := &node{}
	root.ensure([]string{"a"})

	_, firstNew := root.ensure([]string{"a", "b", "c"})
	if firstNew != 1 {
		t.Errorf("expected first created depth 1, got %d", firstNew)
	}

	_, firstNew = root.ensure([]string{"a", "b", "c"})
	if firstNew != -1 {
		t.Errorf("expected -1 for fully existing chain, got %d", firstNew)
	}
}

func TestNodeEnsureConvertsScalarLeafToContainer(t *testing.T) {
	root := &node{}
	target, _ := root.ensure([]string{"a"})
	target.set("scalar", 1)

	root.ensure([]string{"a", "b"})

	a := root.locate([]string{"a"})
	if a.value != nil {
		t.Error("scalar leaf gaining a child must drop its value")
	}
	if _, ok := a.children["b"]; !ok {
		t.Error("child b missing")
	}
}

func TestMaterializeEmptyContainerIsNil(t *testing.T) {
	root := &node{}
	root.ensure([]string{"a", "b"})

	if v := root.locate([]string{"a"}).materialize(); v != nil {
		t.Errorf("empty container should materialize nil, got %#v", v)
	}
}

func TestFirstAbsentTreatsEmptyContainersAsAbsent(t *testing.T) {
	root := &node{}
	target, _ := root.ensure([]string{"a", "b"})
	target.set("v", 1)

	if got := root.firstAbsent([]string{"a", "b"}); got != -1 {
		t.Errorf("populated chain: expected -1, got %d", got)
	}
	if got := root.firstAbsent([]string{"a", "c"}); got != 1 {
		t.Errorf("missing leaf: expected 1, got %d", got)
	}

	empty := &node{}
	empty.ensure([]string{"a", "b"})
	if got := empty.firstAbsent([]string{"a", "b"}); got != 0 {
		t.Errorf("empty containers hold no data: expected 0, got %d", got)
	}
}

func TestNoOpUpdateCreatesNoNodes(t *testing.T) {
	s := New(DefaultConfig())
	err := s.UpdateChildren(context.Background(), MustParsePath("a/b"), map[string]any{"x": nil})
	if err != nil {
		t.Fatalf("UpdateChildren: %v", err)
	}
	if s.root.locate([]string{"a"}) != nil {
		t.Error("a no-op update must not plant container nodes")
	}
	if s.rev != 0 {
		t.Errorf("a no-op update must not advance the revision, got %d", s.rev)
	}
}

func TestSetDecomposesMapsIntoChildren(t *testing.T) {
	n := &node{}
	n.set(map[string]any{"x": "1", "y": map[string]any{"z": "2"}}, 5)

	if n.value != nil {
		t.Error("map node should hold children, not a value")
	}
	if got := n.locate([]string{"y", "z"}).value; got != "2" {
		t.Errorf("nested field not addressable: got %#v", got)
	}
	if n.rev != 5 || n.locate([]string{"y", "z"}).rev != 5 {
		t.Error("revision must stamp the whole written subtree")
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]any{"b": 1, "a": 2, "c": 3})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
