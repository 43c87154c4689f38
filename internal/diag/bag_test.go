package diag

import (
	"testing"

	"quartz/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(TplUnresolvedName, source.Span{}, "one")) {
		t.Fatalf("first add rejected")
	}
	if !b.Add(NewError(TplUnresolvedName, source.Span{}, "two")) {
		t.Fatalf("second add rejected")
	}
	if b.Add(NewError(TplUnresolvedName, source.Span{}, "three")) {
		t.Fatalf("expected third add to be dropped")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagSortStable(t *testing.T) {
	b := NewBag(8)
	b.Add(NewError(TplArityMismatch, source.Span{File: 1, Start: 10, End: 11}, "later"))
	b.Add(NewError(TplUnresolvedName, source.Span{File: 1, Start: 2, End: 3}, "earlier"))
	b.Sort()
	if b.Items()[0].Message != "earlier" {
		t.Fatalf("sort did not order by span start")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	sp := source.Span{File: 1, Start: 5, End: 6}
	b.Add(NewError(TplEmptyFold, sp, "dup"))
	b.Add(NewError(TplEmptyFold, sp, "dup"))
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("dedup kept %d items", b.Len())
	}
}

func TestHasErrors(t *testing.T) {
	b := NewBag(4)
	b.Add(New(SevWarning, TplInfo, source.Span{}, "warn"))
	if b.HasErrors() {
		t.Fatalf("warning counted as error")
	}
	b.Add(NewError(TplRecursionLimit, source.Span{}, "boom"))
	if !b.HasErrors() {
		t.Fatalf("error not detected")
	}
}
