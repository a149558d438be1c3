package screener

import (
	"testing"

	"GridironMarket/internal/model"
)

func f(v float64) *float64 { return &v }

func board() []model.Team {
	return []model.Team{
		{Name: "Buffalo", Division: "AFC East", Volume: f(300), WeekChangePercent: f(2)},
		{Name: "Dallas", Division: "NFC East", Volume: f(900), WeekChangePercent: f(-12)},
		{Name: "Miami", Division: "AFC East", WeekChangePercent: f(6)},
		{Name: "New England", Division: "AFC East", Volume: f(500)},
	}
}

func TestFilter_SearchAndDivision(t *testing.T) {
	got := Filter(board(), "  NEW ", AllDivisions)
	if len(got) != 1 || got[0].Name != "New England" {
		t.Fatalf("expected New England, got %+v", got)
	}

	got = Filter(board(), "", "AFC East")
	if len(got) != 3 {
		t.Fatalf("expected 3 AFC East teams, got %d", len(got))
	}

	got = Filter(board(), "a", "NFC East")
	if len(got) != 1 || got[0].Name != "Dallas" {
		t.Errorf("expected Dallas, got %+v", got)
	}

	if got := Filter(board(), "", ""); len(got) != 4 {
		t.Errorf("empty division should match all, got %d", len(got))
	}
}

func TestTopByVolume(t *testing.T) {
	got := TopByVolume(board(), 3)
	want := []string{"Dallas", "New England", "Buffalo"}
	if len(got) != len(want) {
		t.Fatalf("expected %d teams, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
}

func TestTrending(t *testing.T) {
	got := Trending(board(), 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 teams with a week change, got %d", len(got))
	}
	if got[0].Name != "Dallas" || got[1].Name != "Miami" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		change *float64
		want   string
	}{
		{f(15), "Surging"},
		{f(3), "Rising"},
		{f(0), "Steady"},
		{f(-5), "Slipping"},
		{f(-20), "Sliding"},
		{nil, "New"},
	}
	for _, c := range cases {
		if got := Classify(c.change); got != c.want {
			t.Errorf("Classify(%v) = %s, want %s", c.change, got, c.want)
		}
	}
}
