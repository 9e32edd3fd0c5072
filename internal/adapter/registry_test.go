package adapter

import (
	"errors"
	"testing"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry(nil)

	for _, name := range []string{
		"lever", "greenhouse", "ashby", "workable", "smartrecruiters",
		"workday", "workday-gql", "workday_gql", "rss", "randstad", "adecco",
	} {
		if _, err := reg.Resolve(name); err != nil {
			t.Errorf("Resolve(%q) returned error: %v", name, err)
		}
	}
}

func TestRegistry_Resolve_Normalizes(t *testing.T) {
	reg := NewRegistry(nil)

	f1, err := reg.Resolve(" Lever ")
	if err != nil {
		t.Fatalf("expected case/space-insensitive lookup, got %v", err)
	}
	f2, _ := reg.Resolve("lever")
	if f1 != f2 {
		t.Error("expected the same adapter instance for both spellings")
	}
}

func TestRegistry_Resolve_WorkdayGQLAliases(t *testing.T) {
	reg := NewRegistry(nil)

	hyphen, _ := reg.Resolve("workday-gql")
	underscore, _ := reg.Resolve("workday_gql")
	if hyphen != underscore {
		t.Error("both spellings should resolve to the same adapter instance")
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Resolve("taleo")
	if err == nil {
		t.Fatal("expected error for unregistered backend, got nil")
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	names := NewRegistry(nil).Names()
	if len(names) != 11 {
		t.Fatalf("expected 11 registered names, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
