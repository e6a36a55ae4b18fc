package extract

import (
	"strings"
)

// Separators between a field name and its hint in a description line, e.g.
// "Experience – for each job: job title, ...". Checked in order; en/em
// dashes first so hyphenated field names survive.
var fieldSeparators = []string{"–", "—", " - ", ":", "-"}

// FieldNames pulls the field names out of a free-text field description,
// one field per non-empty line.
func FieldNames(description string) []string {
	var names []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		if line == "" {
			continue
		}
		name := line
		for _, sep := range fieldSeparators {
			if idx := strings.Index(line, sep); idx > 0 {
				name = line[:idx]
				break
			}
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// EnsureFields backfills described fields the model omitted so every field
// named in the description appears as a key: absent data is an empty
// scalar, never a missing key or null. Matching is case-insensitive; keys
// the model chose are kept as returned. Returns the list of backfilled names.
func EnsureFields(data ExtractedData, names []string) []string {
	var added []string
	for _, name := range names {
		if hasFieldFold(data, name) {
			continue
		}
		data[name] = ScalarValue("")
		added = append(added, name)
	}
	return added
}

func hasFieldFold(data ExtractedData, name string) bool {
	for k := range data {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
