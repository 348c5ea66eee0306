package selection

import (
	"reflect"
	"testing"
)

func TestSelectAll(t *testing.T) {
	got := SelectAll([]uint{3, 1, 2}, []uint{2, 5})
	want := []uint{1, 2, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SelectAll = %v, want %v", got, want)
	}
}

func TestSelectAllIdempotent(t *testing.T) {
	candidates := []uint{4, 2, 2, 7}
	once := SelectAll(candidates, []uint{1})
	twice := SelectAll(candidates, once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Second SelectAll changed the selection: %v -> %v", once, twice)
	}
}

func TestSelectAllEmpty(t *testing.T) {
	got := SelectAll(nil, nil)
	if len(got) != 0 {
		t.Errorf("Expected empty selection, got %v", got)
	}
}

func TestClearAll(t *testing.T) {
	got := ClearAll()
	if len(got) != 0 {
		t.Errorf("Expected empty selection, got %v", got)
	}
}

func TestContains(t *testing.T) {
	sel := []uint{1, 3, 5}
	if !Contains(sel, 3) {
		t.Error("Expected selection to contain 3")
	}
	if Contains(sel, 4) {
		t.Error("Expected selection to not contain 4")
	}
	if Contains(nil, 1) {
		t.Error("Expected empty selection to contain nothing")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]uint{5, 1, 5, 1, 2})
	want := []uint{1, 2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}
