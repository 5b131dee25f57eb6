package compose

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ParsePromptSpec maps raw wire fields onto a PromptSpec, resolving the
// "random"/"none" sentinels into the spec's unset form. Matching against
// the enumerations is case-insensitive; the canonical spelling is what
// ends up in the spec. An empty field counts as its sentinel, so a form
// that omits a style field still composes.
func ParsePromptSpec(architect, region, buildingType, interiorExterior, atmosphere string) (PromptSpec, error) {
	var spec PromptSpec
	var err error

	if spec.Architect, err = parseRandomable("architect", architect, Architects); err != nil {
		return PromptSpec{}, err
	}
	if spec.Region, err = parseRandomable("region", region, Regions); err != nil {
		return PromptSpec{}, err
	}
	if spec.BuildingType, err = parseRandomable("building type", buildingType, BuildingTypes); err != nil {
		return PromptSpec{}, err
	}

	ie := strings.ToLower(strings.TrimSpace(interiorExterior))
	switch ie {
	case "", SentinelNone:
		spec.InteriorExterior = ""
	case "interior", "exterior":
		spec.InteriorExterior = ie
	default:
		return PromptSpec{}, &InvalidEnumError{Field: "interior/exterior", Value: interiorExterior}
	}

	atm := strings.TrimSpace(atmosphere)
	if atm == "" || strings.EqualFold(atm, SentinelRandom) {
		spec.Atmosphere = ""
	} else {
		canonical := titleCaser.String(strings.ToLower(atm))
		if _, ok := atmosphereSentences[canonical]; !ok {
			return PromptSpec{}, &InvalidEnumError{Field: "atmosphere", Value: atmosphere}
		}
		spec.Atmosphere = canonical
	}

	return spec, nil
}

func parseRandomable(field, value string, enum []string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, SentinelRandom) {
		return "", nil
	}
	for _, candidate := range enum {
		if strings.EqualFold(candidate, v) {
			return candidate, nil
		}
	}
	return "", &InvalidEnumError{Field: field, Value: value}
}

// CanonicalAspectRatio matches a wire aspect-ratio label case-insensitively.
func CanonicalAspectRatio(value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, label := range AspectRatios {
		if strings.EqualFold(label, v) {
			return label, nil
		}
	}
	return "", &InvalidEnumError{Field: "aspect ratio", Value: value}
}

// CanonicalResolution matches a wire resolution label case-insensitively.
func CanonicalResolution(value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, label := range Resolutions {
		if strings.EqualFold(label, v) {
			return label, nil
		}
	}
	return "", &InvalidEnumError{Field: "resolution", Value: value}
}
