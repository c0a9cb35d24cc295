package main

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
)

func fixtureRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("r%02d", i), "x"}
	}
	return rows
}

func TestShuffleRows_Deterministic(t *testing.T) {
	rows := fixtureRows(20)
	a := shuffleRows(rows, 7, 0)
	b := shuffleRows(rows, 7, 0)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed gave different orders")
	}
	if reflect.DeepEqual(a, rows) {
		t.Fatalf("expected rows to be reordered")
	}
	if rows[0][0] != "r00" {
		t.Fatalf("input slice was modified")
	}

	var got []string
	for _, r := range a {
		got = append(got, r[0])
	}
	sort.Strings(got)
	for i, id := range got {
		if id != fmt.Sprintf("r%02d", i) {
			t.Fatalf("shuffle lost or duplicated rows: %v", got)
		}
	}
}

func TestShuffleRows_Sample(t *testing.T) {
	if got := shuffleRows(fixtureRows(10), 1, 3); len(got) != 3 {
		t.Fatalf("expected 3 sampled rows, got %d", len(got))
	}
	if got := shuffleRows(fixtureRows(2), 1, 5); len(got) != 2 {
		t.Fatalf("expected all rows when sample exceeds size, got %d", len(got))
	}
}
