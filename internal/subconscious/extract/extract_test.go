package extract

import (
	"reflect"
	"testing"
)

func TestConceptsFiltersStopWordsAndNumbers(t *testing.T) {
	got := Concepts("The neural network learned from 1234 examples with their connections")
	want := []string{"neural", "network", "learn", "exampl", "connection"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Concepts() = %v, want %v", got, want)
	}
}

func TestConceptsDedupesPreservingOrder(t *testing.T) {
	got := Concepts("memory memory recall memory")
	want := []string{"memory", "recall"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Concepts() = %v, want %v", got, want)
	}
}

func TestConceptsCapsAtFifteen(t *testing.T) {
	text := ""
	for i := 0; i < 20; i++ {
		text += "word" + string(rune('a'+i)) + " "
	}
	got := Concepts(text)
	if len(got) > 15 {
		t.Errorf("Concepts() returned %d entries, want <= 15", len(got))
	}
}

func TestInsightSentencesSelectsMarkedOnly(t *testing.T) {
	response := "This is plain. That's an interesting connection. Something neutral. Perhaps this matters too."
	got := InsightSentences(response, DefaultInsightMarkers)
	if len(got) != 2 {
		t.Fatalf("expected 2 marked sentences, got %d: %v", len(got), got)
	}
}

func TestInsightSentencesCapsAtThree(t *testing.T) {
	response := "notice one. notice two. notice three. notice four."
	got := InsightSentences(response, DefaultInsightMarkers)
	if len(got) != 3 {
		t.Errorf("expected cap of 3, got %d", len(got))
	}
}
