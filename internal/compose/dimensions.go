package compose

// resolutionShortSides maps a resolution label to the shorter pixel side.
var resolutionShortSides = map[string]int{
	"SD (480p)":       480,
	"HD (720p)":       720,
	"FULL HD (1080p)": 1080,
	"QHD (1440p)":     1440,
}

// Resolutions lists the resolution labels in ascending order.
var Resolutions = []string{
	"SD (480p)", "HD (720p)", "FULL HD (1080p)", "QHD (1440p)",
}

// aspectRule derives the long side from the short one. For horizontal
// ratios the height is the short side, for vertical ratios the width.
type aspectRule struct {
	horizontal bool
	num, den   int
}

var aspectRules = map[string]aspectRule{
	"1:1 (Square)":                {horizontal: true, num: 1, den: 1},
	"3:2 (Horizontal)":            {horizontal: true, num: 3, den: 2},
	"4:3 (Horizontal)":            {horizontal: true, num: 4, den: 3},
	"16:9 (Horizontal)":           {horizontal: true, num: 16, den: 9},
	"19:9 (Cinematic Horizontal)": {horizontal: true, num: 19, den: 9},
	"3:4 (Vertical)":              {horizontal: false, num: 4, den: 3},
	"9:16 (Vertical)":             {horizontal: false, num: 16, den: 9},
	"2:3 (Vertical)":              {horizontal: false, num: 3, den: 2},
	"9:19 (Vertical)":             {horizontal: false, num: 19, den: 9},
}

// AspectRatios lists the selectable aspect-ratio labels.
var AspectRatios = []string{
	"1:1 (Square)", "3:2 (Horizontal)", "4:3 (Horizontal)",
	"16:9 (Horizontal)", "19:9 (Cinematic Horizontal)",
	"3:4 (Vertical)", "9:16 (Vertical)", "2:3 (Vertical)", "9:19 (Vertical)",
}

// ComposeDimensions converts an aspect-ratio label and a resolution label
// into latent image pixel dimensions. The derived side is truncated toward
// zero, not rounded.
func ComposeDimensions(aspectRatio, resolution string) (width, height int, err error) {
	short, ok := resolutionShortSides[resolution]
	if !ok {
		return 0, 0, &InvalidEnumError{Field: "resolution", Value: resolution}
	}
	rule, ok := aspectRules[aspectRatio]
	if !ok {
		return 0, 0, &InvalidEnumError{Field: "aspect ratio", Value: aspectRatio}
	}
	long := short * rule.num / rule.den
	if rule.horizontal {
		return long, short, nil
	}
	return short, long, nil
}
