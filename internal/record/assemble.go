// Package record assembles regulation records and persists them as a JSON array.
package record

import (
	"math"
	"strings"

	"github.com/ppiankov/regscout/internal/model"
)

// DefaultStatus is the lifecycle status stamped on generated records
const DefaultStatus = "final"

// Assemble builds the persisted record for one document. It is a pure function
// of its inputs and never fails.
func Assemble(page *model.RawPage, fields model.FieldSet, tags []model.Tag, sourceURL, status, date string) model.RegulationRecord {
	fields = fields.Complete()

	if sourceURL == "" && page != nil {
		sourceURL = page.URL
	}
	if status == "" {
		status = DefaultStatus
	}
	if tags == nil {
		tags = []model.Tag{}
	}

	bill := fields[model.FieldBillName].Answer

	return model.RegulationRecord{
		ID:           RecordID(bill),
		Jurisdiction: fields[model.FieldJurisdiction].Answer,
		Bill:         bill,
		Docket:       fields[model.FieldDocketNumber].Answer,
		Status:       status,
		Confidence:   MeanConfidence(fields),
		LastUpdated:  date,
		SourceURLs:   []string{sourceURL},
		Fields:       fields,
		Tags:         tags,
	}
}

// RecordID derives the record id from a bill name: lowercase, with spaces and
// slashes replaced by hyphens. Distinct documents with the same bill collide.
func RecordID(bill string) string {
	return strings.NewReplacer(" ", "-", "/", "-").Replace(strings.ToLower(bill))
}

// MeanConfidence averages the nine field confidences, rounded to two decimals
func MeanConfidence(fields model.FieldSet) float64 {
	names := model.FieldNames()

	var sum float64
	for _, name := range names {
		sum += fields.Get(name).Confidence
	}
	return math.Round(sum/float64(len(names))*100) / 100
}
