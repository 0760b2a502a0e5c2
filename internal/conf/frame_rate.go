package conf

import (
	"encoding/json"
	"fmt"
)

// FrameRate is the targetFps parameter.
type FrameRate float64

// MarshalJSON implements json.Marshaler.
func (f FrameRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FrameRate) UnmarshalJSON(b []byte) error {
	var in float64
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	if in <= 0 {
		return fmt.Errorf("invalid frame rate: %v", in)
	}

	*f = FrameRate(in)
	return nil
}

// UnmarshalEnv implements env.Unmarshaler.
func (f *FrameRate) UnmarshalEnv(_ string, v string) error {
	return f.UnmarshalJSON([]byte(v))
}
