package conf

import (
	"encoding/json"
	"fmt"
)

// AspectRatioMode is the aspectRatioMode parameter.
// It drives which capture format is preferred and the output track geometry.
type AspectRatioMode int

// supported aspect ratio modes.
const (
	// AspectRatioModeVertical is a 9:16 output obtained by rotating the
	// native 16:9 sensor format upright.
	AspectRatioModeVertical AspectRatioMode = iota

	// AspectRatioModeHorizontal is a 16:9 output cropped out of the
	// upright buffer.
	AspectRatioModeHorizontal

	// AspectRatioModeSquare is a 1:1 output cropped out of the
	// upright buffer.
	AspectRatioModeSquare
)

// MarshalJSON implements json.Marshaler.
func (m AspectRatioMode) MarshalJSON() ([]byte, error) {
	var out string

	switch m {
	case AspectRatioModeVertical:
		out = "vertical"

	case AspectRatioModeHorizontal:
		out = "horizontal"

	case AspectRatioModeSquare:
		out = "square"

	default:
		return nil, fmt.Errorf("invalid aspect ratio mode: %v", m)
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *AspectRatioMode) UnmarshalJSON(b []byte) error {
	var in string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	switch in {
	case "vertical":
		*m = AspectRatioModeVertical

	case "horizontal":
		*m = AspectRatioModeHorizontal

	case "square":
		*m = AspectRatioModeSquare

	default:
		return fmt.Errorf("invalid aspect ratio mode: '%s'", in)
	}

	return nil
}

// UnmarshalEnv implements env.Unmarshaler.
func (m *AspectRatioMode) UnmarshalEnv(_ string, v string) error {
	return m.UnmarshalJSON([]byte(`"` + v + `"`))
}

// String implements fmt.Stringer.
func (m AspectRatioMode) String() string {
	byts, err := m.MarshalJSON()
	if err != nil {
		return "invalid"
	}
	var out string
	json.Unmarshal(byts, &out) //nolint:errcheck
	return out
}
