package services

import "testing"

func TestCatalogShape(t *testing.T) {
	items := Items()
	if len(items) != ItemCount {
		t.Fatalf("expected %d items, got %d", ItemCount, len(items))
	}
	for i, it := range items {
		if it.ID != i+1 {
			t.Fatalf("item at index %d has id %d", i, it.ID)
		}
		if it.Dimension == "" {
			t.Fatalf("item %d has no dimension", it.ID)
		}
		for _, locale := range []string{"en", "id"} {
			if it.StemI18n[locale] == "" {
				t.Fatalf("item %d missing %s stem", it.ID, locale)
			}
		}
	}
}

func TestDimensionsPartitionItemsEvenly(t *testing.T) {
	dims := Dimensions()
	if len(dims) != 9 {
		t.Fatalf("expected 9 dimensions, got %d: %v", len(dims), dims)
	}
	counts := map[string]int{}
	for _, it := range Items() {
		counts[it.Dimension]++
	}
	for _, d := range dims {
		if counts[d] != 3 {
			t.Fatalf("dimension %s has %d items, want 3", d, counts[d])
		}
	}
}

func TestLikertLabels(t *testing.T) {
	for _, locale := range []string{"en", "id", "unknown"} {
		labels := LikertLabels(locale)
		if len(labels) != LikertMax-LikertMin+1 {
			t.Fatalf("locale %s: %d labels for a %d..%d scale", locale, len(labels), LikertMin, LikertMax)
		}
	}
	if LikertLabels("id")[0] != "Tidak Pernah" {
		t.Fatalf("unexpected first id label: %q", LikertLabels("id")[0])
	}
}

func TestItemDimension(t *testing.T) {
	if got := ItemDimension(1); got != "Preoccupation" {
		t.Fatalf("item 1 dimension = %q", got)
	}
	if got := ItemDimension(27); got != "Conflict" {
		t.Fatalf("item 27 dimension = %q", got)
	}
	if got := ItemDimension(0); got != "" {
		t.Fatalf("item 0 dimension = %q", got)
	}
	if got := ItemDimension(28); got != "" {
		t.Fatalf("item 28 dimension = %q", got)
	}
}
