package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/session"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestParseActivity(t *testing.T) {
	cases := map[string]model.ActivityType{
		"museum":      model.ActivityMuseum,
		"park":        model.ActivityPark,
		"shopping":    model.ActivityShopping,
		"cafe":        model.ActivityCafe,
		"lunch":       model.ActivityLunch,
		"dinner":      model.ActivityDinner,
		"sightseeing": model.ActivitySightseeing,
		"bogus":       model.ActivitySightseeing,
	}
	for s, want := range cases {
		if got := parseActivity(s); got != want {
			t.Errorf("parseActivity(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestCheckExpectedReportsMismatch(t *testing.T) {
	sc := &Scenario{
		Name: "mismatch",
		Expected: Expected{
			Pending: true,
			Visited: []string{"Old Town Walk"},
			Replans: 1,
		},
	}
	failures := checkExpected(sc, session.Summary{})
	if len(failures) != 3 {
		t.Fatalf("expected 3 failures, got %d: %v", len(failures), failures)
	}
}
