package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDictionaryMergeLastWriteWins(t *testing.T) {
	d := NewDictionary()
	d.Merge([]WordEntry{
		{Word: "CAT", Definitions: []string{"old"}},
		{Word: "DOG", Definitions: []string{"barks"}},
	})
	d.Merge([]WordEntry{
		{Word: "CAT", Definitions: []string{"new", "newer"}},
		{Word: "EEL", Definitions: []string{"slippery"}},
	})

	want := Dictionary{
		"CAT": {"new", "newer"},
		"DOG": {"barks"},
		"EEL": {"slippery"},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestDictionaryMergeCopiesDefinitions(t *testing.T) {
	defs := []string{"a"}
	d := NewDictionary()
	d.Merge([]WordEntry{{Word: "A", Definitions: defs}})
	defs[0] = "changed"

	if d["A"][0] != "a" {
		t.Errorf("dictionary shares storage with the merged entry: %q", d["A"][0])
	}
}

func TestDictionaryEntriesSorted(t *testing.T) {
	d := Dictionary{"ZEBRA": {"z"}, "APE": {"a"}, "MOLE": {"m"}}

	want := []WordEntry{
		{Word: "APE", Definitions: []string{"a"}},
		{Word: "MOLE", Definitions: []string{"m"}},
		{Word: "ZEBRA", Definitions: []string{"z"}},
	}
	if diff := cmp.Diff(want, d.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
