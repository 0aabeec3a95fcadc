package radio

import (
	"fmt"
	"strconv"
)

// addCommands exposes the tuning operations to gobot's API.
func (s *KT0915Driver) addCommands() {
	s.AddCommand("Frequency", func(params map[string]interface{}) interface{} {
		return map[string]interface{}{
			"mode":      s.Mode().String(),
			"frequency": s.Frequency(),
			"tuned":     s.TunedFrequency(),
		}
	})
	s.AddCommand("SetFrequency", func(params map[string]interface{}) interface{} {
		frequency, err := uintParam(params, "frequency", 32)
		if err != nil {
			return commandResult(err)
		}
		return commandResult(s.SetFrequency(uint32(frequency)))
	})
	s.AddCommand("FrequencyUp", func(params map[string]interface{}) interface{} {
		return commandResult(s.FrequencyUp())
	})
	s.AddCommand("FrequencyDown", func(params map[string]interface{}) interface{} {
		return commandResult(s.FrequencyDown())
	})
	s.AddCommand("SetStep", func(params map[string]interface{}) interface{} {
		step, err := uintParam(params, "step", 16)
		if err != nil {
			return commandResult(err)
		}
		return commandResult(s.SetStep(uint16(step)))
	})
	s.AddCommand("DeviceID", func(params map[string]interface{}) interface{} {
		id, err := s.DeviceID()
		if err != nil {
			return commandResult(err)
		}
		return id
	})
}

// commandResult turns an error into something the API can encode;
// error values marshal to an empty JSON object.
func commandResult(err error) interface{} {
	if err == nil {
		return nil
	}
	return map[string]interface{}{"error": err.Error()}
}

// uintParam reads an unsigned command parameter. JSON numbers arrive as
// float64, query parameters as strings.
func uintParam(params map[string]interface{}, name string, bits int) (uint64, error) {
	raw, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", name)
	}

	var text string
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("parameter %q: %v is not an unsigned integer", name, v)
		}
		text = strconv.FormatUint(uint64(v), 10)
	case int:
		text = strconv.Itoa(v)
	case uint32:
		text = strconv.FormatUint(uint64(v), 10)
	case string:
		text = v
	default:
		return 0, fmt.Errorf("parameter %q: unsupported type %T", name, raw)
	}

	value, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %v", name, err)
	}
	return value, nil
}
