package compose

import (
	"errors"
	"strings"
	"testing"
)

func TestComposePromptDeterministic(t *testing.T) {
	spec := PromptSpec{
		Architect:        "Zaha Hadid",
		Region:           "Europe",
		BuildingType:     "Cultural Architecture",
		InteriorExterior: "exterior",
		Atmosphere:       "Sunset",
	}
	first, err := ComposePrompt(spec)
	if err != nil {
		t.Fatalf("ComposePrompt returned error: %v", err)
	}
	want := "(((Zaha Hadid))), ((Europe)), ((Cultural Architecture)), ((exterior)), " +
		"A breathtaking sunset painting the sky in vibrant colors, " +
		"(realistic architectural photography, architectural photography, realistic photography, " +
		"realistic, photograph, ultra-high resolution, architecture, building, building photography, high quality)"
	if first != want {
		t.Fatalf("prompt mismatch:\ngot  %q\nwant %q", first, want)
	}
	for i := 0; i < 10; i++ {
		again, err := ComposePrompt(spec)
		if err != nil {
			t.Fatalf("ComposePrompt returned error on repeat: %v", err)
		}
		if again != first {
			t.Fatalf("prompt not deterministic: got %q then %q", first, again)
		}
	}
}

func TestComposePromptOmitsAtmosphereWhenUnset(t *testing.T) {
	spec := PromptSpec{
		Architect:    "Tadao Ando",
		Region:       "Asia",
		BuildingType: "Religious Architecture",
	}
	for i := 0; i < 20; i++ {
		prompt, err := ComposePrompt(spec)
		if err != nil {
			t.Fatalf("ComposePrompt returned error: %v", err)
		}
		for _, atmosphere := range Atmospheres {
			sentence, _ := AtmosphereSentence(atmosphere)
			if strings.Contains(prompt, sentence) {
				t.Fatalf("prompt contains atmosphere sentence for %q: %q", atmosphere, prompt)
			}
		}
	}
}

func TestComposePromptInteriorExteriorClause(t *testing.T) {
	base := PromptSpec{
		Architect:    "Renzo Piano",
		Region:       "Europe",
		BuildingType: "Public Architecture",
	}

	prompt, err := ComposePrompt(base)
	if err != nil {
		t.Fatalf("ComposePrompt returned error: %v", err)
	}
	if strings.Contains(prompt, "((interior))") || strings.Contains(prompt, "((exterior))") {
		t.Fatalf("unset interior/exterior produced a clause: %q", prompt)
	}

	for _, ie := range InteriorExteriorValues {
		spec := base
		spec.InteriorExterior = ie
		prompt, err := ComposePrompt(spec)
		if err != nil {
			t.Fatalf("ComposePrompt(%q) returned error: %v", ie, err)
		}
		if !strings.Contains(prompt, "(("+ie+"))") {
			t.Fatalf("prompt missing ((%s)) clause: %q", ie, prompt)
		}
	}
}

func TestComposePromptRandomPicksFromEnum(t *testing.T) {
	for i := 0; i < 50; i++ {
		prompt, err := ComposePrompt(PromptSpec{})
		if err != nil {
			t.Fatalf("ComposePrompt returned error: %v", err)
		}
		found := false
		for _, architect := range Architects {
			if strings.HasPrefix(prompt, "((("+architect+")))") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("random architect not from enumeration: %q", prompt)
		}
	}
}

func TestComposePromptInvalidEnum(t *testing.T) {
	tests := []struct {
		name string
		spec PromptSpec
	}{
		{"architect", PromptSpec{Architect: "Le Corbusier", Region: "Europe", BuildingType: "Refurbishment"}},
		{"region", PromptSpec{Architect: "Zaha Hadid", Region: "Atlantis", BuildingType: "Refurbishment"}},
		{"building type", PromptSpec{Architect: "Zaha Hadid", Region: "Europe", BuildingType: "Castle"}},
		{"interior/exterior", PromptSpec{Architect: "Zaha Hadid", Region: "Europe", BuildingType: "Refurbishment", InteriorExterior: "both"}},
		{"atmosphere", PromptSpec{Architect: "Zaha Hadid", Region: "Europe", BuildingType: "Refurbishment", Atmosphere: "Foggy"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComposePrompt(tc.spec)
			var enumErr *InvalidEnumError
			if !errors.As(err, &enumErr) {
				t.Fatalf("expected InvalidEnumError, got %v", err)
			}
			if enumErr.Field != tc.name {
				t.Fatalf("error field = %q, want %q", enumErr.Field, tc.name)
			}
		})
	}
}
