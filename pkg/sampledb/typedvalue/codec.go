// Package typedvalue converts between SampleDB's tagged property values
// ({"_type": tag, ...}) and Go values.
//
// Decoders return ok=false when the input is nil, has no "_type" key or
// carries a different tag, so callers can probe several decoders in turn.
package typedvalue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TypeKey is the discriminator key of a tagged value.
const TypeKey = "_type"

const (
	TagText            = "text"
	TagBool            = "bool"
	TagQuantity        = "quantity"
	TagDatetime        = "datetime"
	TagTimeSeries      = "timeseries"
	TagObjectReference = "object_reference"
	TagFile            = "file"
)

// DatetimeLayout is the wire format of datetime values.
const DatetimeLayout = "2006-01-02 15:04:05"

// ErrUnsupportedType is returned by Encode for Go values with no tagged form.
var ErrUnsupportedType = errors.New("typedvalue: unsupported type")

// Quantity is a measured value with units. Value keeps the wire text so
// encoding reproduces it exactly.
type Quantity struct {
	Value string
	Units string
}

// Float parses Value.
func (q Quantity) Float() (float64, error) {
	return strconv.ParseFloat(q.Value, 64)
}

// TimeSeries carries CSV rows of (timestamp, value, value in base units).
type TimeSeries struct {
	Data  string
	Units string
}

// ObjectReference is the id of another object.
type ObjectReference int

// FileReference is the id of a file attached to the object.
type FileReference int

// Tag returns the discriminator of v, or "" if there is none.
func Tag(v map[string]any) string {
	if v == nil {
		return ""
	}
	tag, _ := v[TypeKey].(string)
	return tag
}

func hasTag(v map[string]any, tag string) bool {
	return Tag(v) == tag
}

func DecodeText(v map[string]any) (string, bool) {
	if !hasTag(v, TagText) {
		return "", false
	}
	s, ok := v["text"].(string)
	return s, ok
}

func EncodeText(s string) map[string]any {
	return map[string]any{TypeKey: TagText, "text": s}
}

// DecodeBool accepts a JSON boolean or the strings "True"/"False".
func DecodeBool(v map[string]any) (bool, bool) {
	if !hasTag(v, TagBool) {
		return false, false
	}
	switch b := v["value"].(type) {
	case bool:
		return b, true
	case string:
		return b == "True", true
	}
	return false, false
}

func EncodeBool(b bool) map[string]any {
	s := "False"
	if b {
		s = "True"
	}
	return map[string]any{TypeKey: TagBool, "value": s}
}

// DecodeQuantity accepts a numeric or string value.
func DecodeQuantity(v map[string]any) (Quantity, bool) {
	if !hasTag(v, TagQuantity) {
		return Quantity{}, false
	}
	value, ok := numberText(v["value"])
	if !ok {
		return Quantity{}, false
	}
	units, _ := v["units"].(string)
	return Quantity{Value: value, Units: units}, true
}

func EncodeQuantity(q Quantity) map[string]any {
	return map[string]any{TypeKey: TagQuantity, "value": q.Value, "units": q.Units}
}

// DecodeDatetime parses utc_datetime with DatetimeLayout in UTC.
func DecodeDatetime(v map[string]any) (time.Time, bool) {
	if !hasTag(v, TagDatetime) {
		return time.Time{}, false
	}
	s, ok := v["utc_datetime"].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DatetimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func EncodeDatetime(t time.Time) map[string]any {
	return map[string]any{TypeKey: TagDatetime, "utc_datetime": t.UTC().Format(DatetimeLayout)}
}

func DecodeTimeSeries(v map[string]any) (TimeSeries, bool) {
	if !hasTag(v, TagTimeSeries) {
		return TimeSeries{}, false
	}
	data, ok := v["data"].(string)
	if !ok {
		return TimeSeries{}, false
	}
	units, _ := v["units"].(string)
	return TimeSeries{Data: data, Units: units}, true
}

func EncodeTimeSeries(ts TimeSeries) map[string]any {
	return map[string]any{TypeKey: TagTimeSeries, "data": ts.Data, "units": ts.Units}
}

// DecodeObjectReference accepts the id as a JSON number, an integer or a
// numeric string.
func DecodeObjectReference(v map[string]any) (ObjectReference, bool) {
	if !hasTag(v, TagObjectReference) {
		return 0, false
	}
	id, ok := intValue(v["object_id"])
	return ObjectReference(id), ok
}

func EncodeObjectReference(id ObjectReference) map[string]any {
	return map[string]any{TypeKey: TagObjectReference, "object_id": int(id)}
}

// EncodeFile wraps a file id. There is no decoder; file values pass through
// Convert unchanged.
func EncodeFile(id FileReference) map[string]any {
	return map[string]any{TypeKey: TagFile, "file_id": int(id)}
}

// Decode dispatches on the tag of v. Unknown tags and the file tag report
// ok=false.
func Decode(v map[string]any) (any, bool) {
	switch Tag(v) {
	case TagText:
		return DecodeText(v)
	case TagBool:
		return DecodeBool(v)
	case TagQuantity:
		return DecodeQuantity(v)
	case TagDatetime:
		return DecodeDatetime(v)
	case TagTimeSeries:
		return DecodeTimeSeries(v)
	case TagObjectReference:
		return DecodeObjectReference(v)
	}
	return nil, false
}

// Encode dispatches on the Go type of v.
func Encode(v any) (map[string]any, error) {
	switch x := v.(type) {
	case string:
		return EncodeText(x), nil
	case bool:
		return EncodeBool(x), nil
	case Quantity:
		return EncodeQuantity(x), nil
	case time.Time:
		return EncodeDatetime(x), nil
	case TimeSeries:
		return EncodeTimeSeries(x), nil
	case ObjectReference:
		return EncodeObjectReference(x), nil
	case FileReference:
		return EncodeFile(x), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case json.Number:
		return n.String(), true
	}
	return "", false
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
