package typedvalue

import (
	"reflect"
	"testing"
	"time"
)

func TestConvert(t *testing.T) {
	in := wire(t, `{
		"name": {"_type": "text", "text": "Sample 1"},
		"ready": {"_type": "bool", "value": "True"},
		"temperature": {"_type": "quantity", "value": "2.46", "units": "DegC"},
		"created": {"_type": "datetime", "utc_datetime": "2020-01-03 11:11:11"},
		"parent": {"_type": "object_reference", "object_id": 1},
		"attachment": {"_type": "file", "file_id": 2},
		"odd": {"_type": "unknown", "x": 1},
		"nested": {
			"inner": {"_type": "text", "text": "deep"},
			"plain": 4
		},
		"list": [
			{"_type": "text", "text": "a"},
			[{"_type": "bool", "value": "False"}],
			"raw"
		],
		"count": 3
	}`)

	got := Convert(in)

	want := map[string]any{
		"name":        "Sample 1",
		"ready":       true,
		"temperature": Quantity{Value: "2.46", Units: "DegC"},
		"created":     time.Date(2020, 1, 3, 11, 11, 11, 0, time.UTC),
		"parent":      ObjectReference(1),
		"attachment":  map[string]any{"_type": "file", "file_id": float64(2)},
		"odd":         map[string]any{"_type": "unknown", "x": float64(1)},
		"nested":      map[string]any{"inner": "deep", "plain": float64(4)},
		"list":        []any{"a", []any{false}, "raw"},
		"count":       float64(3),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Convert:\ngot  %#v\nwant %#v", got, want)
	}

	if _, ok := in["name"].(map[string]any); !ok {
		t.Error("Convert modified its input")
	}
}

func TestConvert_Nil(t *testing.T) {
	if Convert(nil) != nil {
		t.Error("Convert(nil) should be nil")
	}
}
