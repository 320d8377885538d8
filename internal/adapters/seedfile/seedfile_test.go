package seedfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Overland-East-Bay/club-roster/internal/domain"
)

const validSeed = `
members:
  - id: 1
    surname: aaa
    givenName: aaa
    patronymic: aaa
    vehicleType: FEEW
    experienceYears: 2.0
  - id: 5
    surname: bbb
    vehicleType: FEFG
    experienceYears: 0.5
`

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	got, err := Parse([]byte(validSeed))
	if err != nil {
		t.Fatalf("Parse() err=%v", err)
	}
	want := []domain.Member{
		{ID: 1, Surname: "aaa", GivenName: "aaa", Patronymic: "aaa", VehicleType: "FEEW", ExperienceYears: 2.0},
		{ID: 5, Surname: "bbb", VehicleType: "FEFG", ExperienceYears: 0.5},
	}
	if len(got) != len(want) {
		t.Fatalf("Parse() len=%d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Parse()[%d]=%+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParse_EmptyDocumentIsEmptyRoster(t *testing.T) {
	t.Parallel()

	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Parse(nil) len=%d, want 0", len(got))
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zero id":       "members:\n  - id: 0\n    surname: a\n",
		"duplicate id":  "members:\n  - id: 1\n  - id: 1\n",
		"nan":           "members:\n  - id: 1\n    experienceYears: .nan\n",
		"unknown field": "members:\n  - id: 1\n    bicycle: road\n",
		"not a number":  "members:\n  - id: 1\n    experienceYears: lots\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: Parse() err=nil, want error", name)
		}
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(validSeed), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load() len=%d, want 2", len(got))
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read seed file") {
		t.Fatalf("Load(missing) err=%v", err)
	}
}
