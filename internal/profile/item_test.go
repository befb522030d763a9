package profile

import "testing"

func TestParseItems(t *testing.T) {
	tests := []struct {
		in   string
		want Item
	}{
		{"history", History},
		{"history,favorites", History | Favorites},
		{" Cookies , passwords ", Cookies | Passwords},
		{"bookmarks", Favorites},
		{"all", All},
		{"history,all", All},
	}
	for _, tt := range tests {
		got, err := ParseItems(tt.in)
		if err != nil {
			t.Errorf("ParseItems(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseItems(%q): want %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestParseItems_Errors(t *testing.T) {
	for _, in := range []string{"", ",", "history,tabs"} {
		if _, err := ParseItems(in); err == nil {
			t.Errorf("ParseItems(%q): expected error", in)
		}
	}
}

func TestItemString(t *testing.T) {
	if got := History.String(); got != "history" {
		t.Errorf("History.String() = %q", got)
	}
	if got := (History | Cookies).String(); got != "history,cookies" {
		t.Errorf("mask String() = %q", got)
	}
	if got := None.String(); got != "none" {
		t.Errorf("None.String() = %q", got)
	}
}

func TestItemHas(t *testing.T) {
	mask := History | Passwords
	if !mask.Has(History) || !mask.Has(Passwords) {
		t.Fatal("expected mask to contain history and passwords")
	}
	if mask.Has(Favorites) {
		t.Fatal("mask should not contain favorites")
	}
	if mask.Has(None) {
		t.Fatal("Has(None) must be false")
	}
}

func TestItemsOrder(t *testing.T) {
	want := []Item{History, Favorites, Cookies, Passwords}
	if len(Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(Items))
	}
	for i := range want {
		if Items[i] != want[i] {
			t.Errorf("Items[%d]: want %s, got %s", i, want[i], Items[i])
		}
	}
}
