package utils

import "testing"

func TestDetermineLocaleQueryParamWins(t *testing.T) {
	got := DetermineLocale("id-ID", "en-US,en;q=0.9", []string{"en", "id"}, "en")
	if got != "id" {
		t.Fatalf("want id, got %s", got)
	}
}

func TestDetermineLocaleAcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,id;q=0.8", []string{"en", "id"}, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocalePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "id;q=0.9,en;q=0.8", []string{"en", "id"}, "en")
	if got != "id" {
		t.Fatalf("want id, got %s", got)
	}
}

func TestDetermineLocaleZeroQExcluded(t *testing.T) {
	got := DetermineLocale("", "id;q=0,en;q=0.5", []string{"en", "id"}, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocaleDefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", []string{"en", "id"}, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
}
