package policy

import (
	"testing"

	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
)

func TestDefaultOrderPrefersAndroidFirst(t *testing.T) {
	s := NewSelector(innertube.NewRegistry(), nil, nil, false)
	profiles := s.Select("jNQXAC9IVRw")
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	got := []string{profiles[0].Name, profiles[1].Name, profiles[2].Name}
	want := []string{"ANDROID", "WEB", "MWEB"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAuthDefaultsLeadWithTV(t *testing.T) {
	s := NewSelector(innertube.NewRegistry(), nil, nil, true)
	profiles := s.Select("jNQXAC9IVRw")
	if len(profiles) == 0 || profiles[0].Name != "TVHTML5" {
		t.Fatalf("expected TVHTML5 first for authenticated defaults, got %+v", profiles)
	}
}

func TestOverridesAreNormalizedAndDeduplicated(t *testing.T) {
	s := NewSelector(innertube.NewRegistry(), []string{"  WEB ", "web", "mWeb", "unknown"}, nil, false)
	profiles := s.Select("jNQXAC9IVRw")
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "WEB" {
		t.Fatalf("first profile = %q, want WEB", profiles[0].Name)
	}
	if profiles[1].Name != "MWEB" {
		t.Fatalf("second profile = %q, want MWEB", profiles[1].Name)
	}
}

func TestInvalidOverridesFallBackToDefaults(t *testing.T) {
	s := NewSelector(innertube.NewRegistry(), []string{"bogus", "nope"}, nil, false)
	profiles := s.Select("jNQXAC9IVRw")
	if len(profiles) == 0 {
		t.Fatalf("expected fallback to defaults")
	}
	if profiles[0].Name != "ANDROID" {
		t.Fatalf("first profile = %q, want ANDROID", profiles[0].Name)
	}
}

func TestSkipClientsAreExcluded(t *testing.T) {
	s := NewSelector(innertube.NewRegistry(), []string{"web", "mweb", "ios"}, []string{"mweb"}, false)
	profiles := s.Select("jNQXAC9IVRw")
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "WEB" || profiles[1].Name != "IOS" {
		t.Fatalf("unexpected order after skip: %q, %q", profiles[0].Name, profiles[1].Name)
	}
}
