// Package yamlwrapper contains a YAML unmarshaler.
package yamlwrapper

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/promptcam/promptcam/internal/conf/jsonwrapper"
)

// YAML is decoded into a generic structure, converted to JSON and then
// decoded with jsonwrapper, so that custom json.Unmarshaler types and
// strict field checking work on YAML input too.

func convertKeys(i interface{}) (interface{}, error) {
	switch x := i.(type) {
	case map[interface{}]interface{}:
		m2 := make(map[string]interface{})
		for k, v := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("integer keys are not supported (%v)", k)
			}

			v2, err := convertKeys(v)
			if err != nil {
				return nil, err
			}

			m2[ks] = v2
		}
		return m2, nil

	case []interface{}:
		a2 := make([]interface{}, len(x))
		for i, v := range x {
			v2, err := convertKeys(v)
			if err != nil {
				return nil, err
			}
			a2[i] = v2
		}
		return a2, nil
	}

	return i, nil
}

// Unmarshal loads the configuration from YAML.
func Unmarshal(buf []byte, dest any) error {
	var temp interface{}
	err := yaml.Unmarshal(buf, &temp)
	if err != nil {
		return err
	}

	temp, err = convertKeys(temp)
	if err != nil {
		return err
	}

	buf, err = json.Marshal(temp)
	if err != nil {
		return err
	}

	return jsonwrapper.Unmarshal(buf, dest)
}
