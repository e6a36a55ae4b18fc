package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldKind tags the shape of an extracted field value.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindList
	KindStructured
)

// FieldValue is the tagged variant for one extracted field: a scalar string,
// a list of strings, or a sequence of string maps for compound fields
// (education, experience). The model's JSON shape decides the kind at parse
// time; downstream consumers switch on Kind instead of walking raw JSON.
type FieldValue struct {
	Kind       FieldKind
	Scalar     string
	List       []string
	Structured []map[string]string
}

// ScalarValue builds a scalar FieldValue.
func ScalarValue(s string) FieldValue { return FieldValue{Kind: KindScalar, Scalar: s} }

// ListValue builds a list FieldValue.
func ListValue(items ...string) FieldValue { return FieldValue{Kind: KindList, List: items} }

// IsEmpty reports whether the value carries no extracted data.
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case KindScalar:
		return v.Scalar == ""
	case KindList:
		return len(v.List) == 0
	case KindStructured:
		return len(v.Structured) == 0
	}
	return true
}

// UnmarshalJSON maps the model's JSON shapes onto the variant:
// string/number/bool/null -> Scalar, array of scalars -> List,
// array of objects (or a bare object) -> Structured. Values inside
// structured entries are flattened to text; that coercion is the only one
// the parser performs.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON emits the underlying shape, so a parse/serialize round trip
// preserves the model's structure.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindScalar:
		return json.Marshal(v.Scalar)
	case KindList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	case KindStructured:
		if v.Structured == nil {
			return json.Marshal([]map[string]string{})
		}
		return json.Marshal(v.Structured)
	}
	return nil, fmt.Errorf("unknown field kind %d", v.Kind)
}

func fromAny(raw any) (FieldValue, error) {
	switch t := raw.(type) {
	case nil:
		// null is not allowed by the extraction contract; normalize to the
		// documented empty-scalar representation rather than dropping the key.
		return ScalarValue(""), nil
	case string:
		return ScalarValue(t), nil
	case float64:
		return ScalarValue(formatNumber(t)), nil
	case bool:
		return ScalarValue(strconv.FormatBool(t)), nil
	case []any:
		return fromArray(t)
	case map[string]any:
		entry, err := flattenObject(t)
		if err != nil {
			return FieldValue{}, err
		}
		return FieldValue{Kind: KindStructured, Structured: []map[string]string{entry}}, nil
	default:
		return FieldValue{}, fmt.Errorf("unsupported field value type %T", raw)
	}
}

func fromArray(arr []any) (FieldValue, error) {
	if len(arr) == 0 {
		return ListValue(), nil
	}
	if _, ok := arr[0].(map[string]any); ok {
		entries := make([]map[string]string, 0, len(arr))
		for _, el := range arr {
			obj, ok := el.(map[string]any)
			if !ok {
				return FieldValue{}, fmt.Errorf("mixed scalar/object entries in list field")
			}
			entry, err := flattenObject(obj)
			if err != nil {
				return FieldValue{}, err
			}
			entries = append(entries, entry)
		}
		return FieldValue{Kind: KindStructured, Structured: entries}, nil
	}

	items := make([]string, 0, len(arr))
	for _, el := range arr {
		s, err := stringifyScalar(el)
		if err != nil {
			return FieldValue{}, err
		}
		items = append(items, s)
	}
	return FieldValue{Kind: KindList, List: items}, nil
}

func flattenObject(obj map[string]any) (map[string]string, error) {
	entry := make(map[string]string, len(obj))
	for k, val := range obj {
		s, err := stringifyScalar(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		entry[k] = s
	}
	return entry, nil
}

func stringifyScalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return formatNumber(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		// nested array/object inside a structured entry: keep it as compact JSON text
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Text renders the value as a single display string. Lists join with ", ";
// structured entries render as "k: v" pairs joined with "; " per entry and
// " | " between entries.
func (v FieldValue) Text() string {
	switch v.Kind {
	case KindScalar:
		return v.Scalar
	case KindList:
		return strings.Join(v.List, ", ")
	case KindStructured:
		entries := make([]string, 0, len(v.Structured))
		for _, entry := range v.Structured {
			keys := make([]string, 0, len(entry))
			for k := range entry {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+": "+entry[k])
			}
			entries = append(entries, strings.Join(pairs, "; "))
		}
		return strings.Join(entries, " | ")
	}
	return ""
}

// ExtractedData maps inferred field names to their values. One instance per
// document + field-description pair; never mutated after the extractor
// returns it.
type ExtractedData map[string]FieldValue

// JSON serializes the data as the model-shaped JSON object.
func (d ExtractedData) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// SortedFieldNames returns the field names in stable lexical order.
func (d ExtractedData) SortedFieldNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseExtractedData decodes a JSON object into ExtractedData.
func ParseExtractedData(raw []byte) (ExtractedData, error) {
	var d ExtractedData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if d == nil {
		d = ExtractedData{}
	}
	return d, nil
}
