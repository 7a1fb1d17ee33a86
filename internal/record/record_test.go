package record

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/regscout/internal/model"
)

func sampleFields() model.FieldSet {
	fields := model.EmptyFieldSet()
	fields[model.FieldBillName] = model.FieldResult{Answer: "40 CFR Part 704", Confidence: 0.95}
	fields[model.FieldDocketNumber] = model.FieldResult{Answer: "EPA-HQ-OPPT-2020-0549", Confidence: 0.95}
	fields[model.FieldJurisdiction] = model.FieldResult{Answer: "EPA", Confidence: 0.95}
	fields[model.FieldRequirements] = model.FieldResult{Answer: "Manufacturers must submit reporting.", Confidence: 0.8}
	fields[model.FieldKeyDates] = model.FieldResult{Answer: "January 1, 2026", Confidence: 0.9}
	return fields
}

func samplePage() *model.RawPage {
	return &model.RawPage{
		Title:       "TSCA Section 8(a)(7)",
		URL:         "https://www.epa.gov/tsca-section-8a7",
		SourceTag:   "EPA",
		CleanedText: "Manufacturers must submit reporting under this section by January 1, 2026.",
	}
}

func TestAssemble(t *testing.T) {
	tags := []model.Tag{{Keyword: "pfas", Category: model.CategoryRegulatedSubstance}}

	rec := Assemble(samplePage(), sampleFields(), tags, "https://www.epa.gov/source", "final", "2025-11-13")

	assert.Equal(t, "40-cfr-part-704", rec.ID)
	assert.Equal(t, "EPA", rec.Jurisdiction)
	assert.Equal(t, "40 CFR Part 704", rec.Bill)
	assert.Equal(t, "EPA-HQ-OPPT-2020-0549", rec.Docket)
	assert.Equal(t, "final", rec.Status)
	assert.Equal(t, 0.51, rec.Confidence) // (0.95*3 + 0.8 + 0.9) / 9 = 0.5055...
	assert.Equal(t, "2025-11-13", rec.LastUpdated)
	assert.Equal(t, []string{"https://www.epa.gov/source"}, rec.SourceURLs)
	assert.Equal(t, tags, rec.Tags)
	assert.Len(t, rec.Fields, 9)
}

func TestAssemble_Defaults(t *testing.T) {
	rec := Assemble(samplePage(), model.FieldSet{}, nil, "", "", "2025-01-01")

	assert.Equal(t, []string{"https://www.epa.gov/tsca-section-8a7"}, rec.SourceURLs)
	assert.Equal(t, DefaultStatus, rec.Status)
	assert.NotNil(t, rec.Tags)
	assert.Equal(t, model.EmptyFieldSet(), rec.Fields)
	assert.Equal(t, "not-found", rec.ID)
	assert.Equal(t, 0.0, rec.Confidence)
}

func TestAssemble_Deterministic(t *testing.T) {
	first := Assemble(samplePage(), sampleFields(), nil, "u", "final", "2025-11-13")
	second := Assemble(samplePage(), sampleFields(), nil, "u", "final", "2025-11-13")

	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		bill string
		want string
	}{
		{"40 CFR Part 704", "40-cfr-part-704"},
		{"TSCA 8(a)(7)/PFAS Rule", "tsca-8(a)(7)-pfas-rule"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RecordID(tt.bill), tt.bill)
	}
}

func TestMeanConfidence(t *testing.T) {
	fields := model.EmptyFieldSet()
	for _, name := range model.FieldNames() {
		fields[name] = model.FieldResult{Answer: "x", Confidence: 0.5}
	}
	assert.Equal(t, 0.5, MeanConfidence(fields))

	fields[model.FieldBillName] = model.FieldResult{Answer: "x", Confidence: 1}
	assert.Equal(t, 0.56, MeanConfidence(fields))
}

func TestRecordJSON_Shape(t *testing.T) {
	tags := []model.Tag{{Keyword: "pfas", Category: model.CategoryRegulatedSubstance}}
	rec := Assemble(samplePage(), sampleFields(), tags, "", "final", "2025-11-13")

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	s := string(data)

	assert.Contains(t, s, `"tags":[["pfas","regulated_substance"]]`)
	assert.Contains(t, s, `"sourceUrls":["https://www.epa.gov/tsca-section-8a7"]`)
	assert.NotContains(t, s, `"references"`)
	assert.Less(t, strings.Index(s, `"billName"`), strings.Index(s, `"exemptions"`))
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "out", "regulations.json"))

	withRefs := Assemble(samplePage(), sampleFields(), []model.Tag{{Keyword: "reporting", Category: model.CategoryRequirement}}, "", "final", "2025-11-13")
	withRefs.References = []string{"https://www.ecfr.gov/current/title-40/part-704"}
	records := []model.RegulationRecord{
		Assemble(samplePage(), sampleFields(), nil, "", "final", "2025-11-13"),
		withRefs,
	}

	require.NoError(t, store.WriteAll(records))

	got, err := store.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestStore_WritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regulations.json")
	store := NewStore(path)

	require.NoError(t, store.WriteAll([]model.RegulationRecord{Assemble(samplePage(), sampleFields(), nil, "", "final", "2025-11-13")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"40-cfr-part-704\""))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestStore_EmptyWritesEmptyArray(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "regulations.json"))

	require.NoError(t, store.WriteAll(nil))

	got, err := store.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := store.ReadAll()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_MalformedFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{nope"},
		{"object instead of array", `{"id": "x"}`},
		{"missing fields", `[{"id": "x"}]`},
		{"bad tag arity", `[{"id":"x","jurisdiction":"EPA","bill":"x","docket":"d","status":"final","confidence":0.5,"lastUpdated":"2025-01-01","sourceUrls":[],"fields":{},"tags":[["pfas"]]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "regulations.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := NewStore(path).ReadAll()
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestStore_RejectsInvalidRecord(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "regulations.json"))
	rec := Assemble(samplePage(), sampleFields(), nil, "", "final", "2025-11-13")
	rec.Confidence = 3

	err := store.WriteAll([]model.RegulationRecord{rec})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, statErr := os.Stat(store.Path())
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
