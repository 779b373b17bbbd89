package models

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"

	"github.com/mitchellh/mapstructure"
)

// jsonNumber matches the JSON number grammar. strconv accepts more ("Inf",
// hex floats) than encoding/json will emit.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// wireText returns s as a JSON number when it reads as one. The backend
// serialises numeric-looking strings as numbers and expects them back that way.
func wireText(s string) interface{} {
	if jsonNumber.MatchString(s) {
		return json.Number(s)
	}
	return s
}

// weakDecode decodes a loosely typed JSON object into target. Numbers may
// arrive as strings and booleans as 0/1.
func weakDecode(input interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// readObject parses a JSON document keeping numbers as json.Number so they
// re-encode with their original text.
func readObject(r io.Reader, target interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(target)
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func readBytes(data []byte, target interface{}) error {
	return readObject(bytes.NewReader(data), target)
}
