package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMalformedReply marks model output that holds no JSON object
var ErrMalformedReply = errors.New("malformed model reply")

// Reply is the parsed form of a model answer that should hold one JSON object.
// Exactly one of Fields or Err is set; Raw always keeps the original text.
type Reply struct {
	Fields map[string]any
	Raw    string
	Err    error
}

// OK reports whether the reply parsed into an object
func (r Reply) OK() bool {
	return r.Err == nil
}

// ParseObject extracts the first top-level JSON object from model text.
// Code fences and prose around the object are ignored.
func ParseObject(raw string) Reply {
	text := stripFences(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Reply{Raw: raw, Err: fmt.Errorf("%w: no JSON object found", ErrMalformedReply)}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return Reply{Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedReply, err)}
	}
	return Reply{Fields: fields, Raw: raw}
}

// Decode maps the reply fields onto out using mapstructure tags, converting
// loosely typed values such as numeric strings.
func (r Reply) Decode(out any) error {
	if !r.OK() {
		return r.Err
	}
	return DecodeLoose(r.Fields, out)
}

// DecodeLoose is the weakly typed mapstructure decode used for model output
func DecodeLoose(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
