package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string or a JSON number and keeps its text.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = FlexString(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return typeError(data, reflect.TypeOf(""))
	}
	*s = FlexString(number.String())
	return nil
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	text, ok := numericText(data)
	if !ok {
		return typeError(data, reflect.TypeOf(0))
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return typeError(data, reflect.TypeOf(0))
	}
	*i = FlexInt(value)
	return nil
}

// FlexFloat accepts a JSON number or a numeric string. Infinities and NaN
// are rejected since they cannot be written back as JSON.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	text, ok := numericText(data)
	if !ok {
		return typeError(data, reflect.TypeOf(0.0))
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return typeError(data, reflect.TypeOf(0.0))
	}
	*f = FlexFloat(value)
	return nil
}

func numericText(data []byte) (string, bool) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false
	}

	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	if data[0] == '-' || (data[0] >= '0' && data[0] <= '9') {
		return string(data), true
	}
	return "", false
}

func typeError(data []byte, target reflect.Type) error {
	return &json.UnmarshalTypeError{Value: string(data), Type: target}
}
