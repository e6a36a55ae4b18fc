package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractedData_Shapes(t *testing.T) {
	raw := []byte(`{
		"Name": "Jane Doe",
		"Email": "",
		"Years": 7,
		"Remote": true,
		"Skills": ["Go", "SQL"],
		"Education": [
			{"degree": "BSc", "institution": "MIT", "year": 2015}
		]
	}`)

	data, err := ParseExtractedData(raw)
	require.NoError(t, err)

	assert.Equal(t, ScalarValue("Jane Doe"), data["Name"])
	assert.Equal(t, ScalarValue(""), data["Email"])
	assert.Equal(t, ScalarValue("7"), data["Years"])
	assert.Equal(t, ScalarValue("true"), data["Remote"])
	assert.Equal(t, ListValue("Go", "SQL"), data["Skills"])

	edu := data["Education"]
	assert.Equal(t, KindStructured, edu.Kind)
	require.Len(t, edu.Structured, 1)
	assert.Equal(t, "BSc", edu.Structured[0]["degree"])
	assert.Equal(t, "MIT", edu.Structured[0]["institution"])
	assert.Equal(t, "2015", edu.Structured[0]["year"])
}

func TestParseExtractedData_NullBecomesEmptyScalar(t *testing.T) {
	data, err := ParseExtractedData([]byte(`{"Phone": null}`))
	require.NoError(t, err)
	assert.Equal(t, ScalarValue(""), data["Phone"])
}

func TestParseExtractedData_BareObjectBecomesStructured(t *testing.T) {
	data, err := ParseExtractedData([]byte(`{"Contact": {"city": "Berlin"}}`))
	require.NoError(t, err)

	v := data["Contact"]
	assert.Equal(t, KindStructured, v.Kind)
	require.Len(t, v.Structured, 1)
	assert.Equal(t, "Berlin", v.Structured[0]["city"])
}

func TestParseExtractedData_MixedListRejected(t *testing.T) {
	_, err := ParseExtractedData([]byte(`{"Skills": ["Go", {"name": "SQL"}]}`))
	assert.Error(t, err)
}

func TestExtractedData_JSONRoundTripPreservesShapes(t *testing.T) {
	original := []byte(`{
		"Name": "Jane Doe",
		"Skills": ["Go", "SQL", "Kubernetes"],
		"Experience": [
			{"company": "Acme", "title": "Engineer"},
			{"company": "Globex", "title": "Lead"}
		],
		"Certifications": []
	}`)

	data, err := ParseExtractedData(original)
	require.NoError(t, err)

	serialized, err := data.JSON()
	require.NoError(t, err)

	reparsed, err := ParseExtractedData(serialized)
	require.NoError(t, err)
	assert.Equal(t, data, reparsed)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(serialized, &asMap))
	assert.IsType(t, "", asMap["Name"])
	assert.IsType(t, []any{}, asMap["Skills"])
	assert.IsType(t, []any{}, asMap["Experience"])
	assert.Empty(t, asMap["Certifications"])
}

func TestFieldValue_IsEmpty(t *testing.T) {
	assert.True(t, ScalarValue("").IsEmpty())
	assert.True(t, ListValue().IsEmpty())
	assert.True(t, FieldValue{Kind: KindStructured}.IsEmpty())

	assert.False(t, ScalarValue("x").IsEmpty())
	assert.False(t, ListValue("x").IsEmpty())
}

func TestFieldValue_Text(t *testing.T) {
	assert.Equal(t, "Jane Doe", ScalarValue("Jane Doe").Text())
	assert.Equal(t, "Go, SQL", ListValue("Go", "SQL").Text())

	v := FieldValue{Kind: KindStructured, Structured: []map[string]string{
		{"company": "Acme", "title": "Engineer"},
		{"company": "Globex", "title": "Lead"},
	}}
	assert.Equal(t,
		"company: Acme; title: Engineer | company: Globex; title: Lead",
		v.Text())
}

func TestSortedFieldNames(t *testing.T) {
	data := ExtractedData{
		"Skills": ListValue("Go"),
		"Email":  ScalarValue(""),
		"Name":   ScalarValue("Jane"),
	}
	assert.Equal(t, []string{"Email", "Name", "Skills"}, data.SortedFieldNames())
}

func TestParseExtractedData_NestedValueInsideStructuredEntryKeptAsJSON(t *testing.T) {
	data, err := ParseExtractedData([]byte(`{
		"Experience": [{"company": "Acme", "stack": ["Go", "SQL"]}]
	}`))
	require.NoError(t, err)

	v := data["Experience"]
	require.Equal(t, KindStructured, v.Kind)
	assert.JSONEq(t, `["Go","SQL"]`, v.Structured[0]["stack"])
}
