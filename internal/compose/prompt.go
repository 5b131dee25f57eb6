// Package compose turns the enumerated style choices of a generation
// request into the exact values the image pipeline consumes: a structured
// text prompt and integer pixel dimensions.
package compose

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// InvalidEnumError reports a wire value outside its closed enumeration.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}

// PromptSpec carries resolved style choices. An empty Architect, Region, or
// BuildingType means "pick one uniformly at random"; an empty
// InteriorExterior or Atmosphere means the clause is omitted. Use
// ParsePromptSpec to map the wire sentinels onto this shape.
type PromptSpec struct {
	Architect        string
	Region           string
	BuildingType     string
	InteriorExterior string
	Atmosphere       string
}

// ComposePrompt renders the positive prompt for the pipeline's text node.
// With all fields set the output is byte-identical across calls; unset
// architect/region/building type are substituted per call, unseeded.
func ComposePrompt(spec PromptSpec) (string, error) {
	architect, err := resolveChoice("architect", spec.Architect, Architects)
	if err != nil {
		return "", err
	}
	region, err := resolveChoice("region", spec.Region, Regions)
	if err != nil {
		return "", err
	}
	buildingType, err := resolveChoice("building type", spec.BuildingType, BuildingTypes)
	if err != nil {
		return "", err
	}
	if spec.InteriorExterior != "" && !slices.Contains(InteriorExteriorValues, spec.InteriorExterior) {
		return "", &InvalidEnumError{Field: "interior/exterior", Value: spec.InteriorExterior}
	}
	if spec.Atmosphere != "" {
		if _, ok := atmosphereSentences[spec.Atmosphere]; !ok {
			return "", &InvalidEnumError{Field: "atmosphere", Value: spec.Atmosphere}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(((%s))), ((%s)), ((%s))", architect, region, buildingType)
	if spec.InteriorExterior != "" {
		fmt.Fprintf(&b, ", ((%s))", spec.InteriorExterior)
	}
	if spec.Atmosphere != "" {
		b.WriteString(", ")
		b.WriteString(atmosphereSentences[spec.Atmosphere])
	}
	b.WriteString(", ")
	b.WriteString(fixedStyleClause)
	return b.String(), nil
}

func resolveChoice(field, value string, enum []string) (string, error) {
	if value == "" {
		return enum[rand.IntN(len(enum))], nil
	}
	if !slices.Contains(enum, value) {
		return "", &InvalidEnumError{Field: field, Value: value}
	}
	return value, nil
}

// AtmosphereSentence exposes the clause for a given atmosphere key.
func AtmosphereSentence(atmosphere string) (string, bool) {
	s, ok := atmosphereSentences[atmosphere]
	return s, ok
}
