package catalog

import "strings"

// OptionPair is a named option value as reported by the platform,
// e.g. {Name: "Size", Value: "M"}.
type OptionPair struct {
	Name  string
	Value string
}

// DeriveSizeColor pattern-matches option names to extract size and color.
// Matching is case-insensitive and accepts both the British and American
// spelling of colour. Unrecognized options are ignored; empty values stay
// nil so callers can distinguish "not present" from "blank".
func DeriveSizeColor(opts []OptionPair) (size, color *string) {
	for _, opt := range opts {
		name := strings.ToLower(strings.TrimSpace(opt.Name))
		value := strings.TrimSpace(opt.Value)
		if value == "" {
			continue
		}
		switch name {
		case "size":
			if size == nil {
				v := value
				size = &v
			}
		case "color", "colour":
			if color == nil {
				v := value
				color = &v
			}
		}
	}
	return size, color
}
