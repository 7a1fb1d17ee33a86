package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/regscout/internal/model"
)

// Rule weights. These rank rules against each other; they are not probabilities.
const (
	confidenceExact     = 0.95
	confidenceDates     = 0.9
	confidenceSentences = 0.8
	confidenceSection   = 0.7
	confidenceTitle     = 0.5
	confidenceDefault   = 0.3
)

const (
	sentenceSeparator = " | "
	dateSeparator     = "; "

	maxTitleLength    = 150
	minTitleLength    = 10
	maxOverviewLength = 300
	minOverviewLength = 100
	maxProductsLength = 200
	productsWindow    = 5000
	acronymWindow     = 500
	agencyNameWindow  = 1000
	maxDates          = 5
)

var (
	cfrPattern    = regexp.MustCompile(`\b\d+\s+CFR\s+Part\s+\d+(?:\.\d+)?`)
	docketPattern = regexp.MustCompile(`\b(?:EPA|FDA|OSHA|CPSC|FTC|USDA|APHIS|FSIS|DOE|DOT|NHTSA|PHMSA|FAA|FCC|SEC|CMS|HHS)(?:-[A-Z]{2,6}){0,3}-\d{4}-(?:[A-Z]-)?\d{3,6}\b`)
	departmentPat = regexp.MustCompile(`Department of [A-Z][a-z]+`)

	requirementPattern = regexp.MustCompile(`(?i)\b(?:shall|must|required to|is required)\b`)
	penaltyPattern     = regexp.MustCompile(`(?i)(?:penalt|violation|\bfine[sd]?\b|civil money|enforcement action)`)
	productPattern     = regexp.MustCompile(`(?i)(?:product|substance|chemical|material|article|item)`)
	exemptionPattern   = regexp.MustCompile(`(?i)(?:exempt|exclu|does not apply|not subject to)`)

	// Recognizers run in this order; the first sighting of a date wins its slot
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	}
)

// agency is an issuing body recognized by the jurisdiction rule
type agency struct {
	name      string
	hosts     []string
	fullNames []string
	token     *regexp.Regexp
}

func newAgency(name string, hosts []string, fullNames ...string) agency {
	return agency{
		name:      name,
		hosts:     hosts,
		fullNames: fullNames,
		token:     regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
	}
}

// agencies in priority order
var agencies = []agency{
	newAgency("EPA", []string{"epa.gov"}, "Environmental Protection Agency"),
	newAgency("FDA", []string{"fda.gov"}, "Food and Drug Administration"),
	newAgency("OSHA", []string{"osha.gov"}, "Occupational Safety and Health Administration"),
	newAgency("CPSC", []string{"cpsc.gov"}, "Consumer Product Safety Commission"),
	newAgency("FTC", []string{"ftc.gov"}, "Federal Trade Commission"),
	newAgency("USDA", []string{"usda.gov"}, "Department of Agriculture"),
	newAgency("DOE", []string{"energy.gov"}, "Department of Energy"),
	newAgency("DOT", []string{"transportation.gov", "dot.gov"}, "Department of Transportation"),
	newAgency("ECHA", []string{"echa.europa.eu"}, "European Chemicals Agency"),
	newAgency("European Commission", []string{"ec.europa.eu"}),
}

func billNameRule(in *ruleInput) model.FieldResult {
	if m := cfrPattern.FindString(in.text); m != "" {
		return found(m, confidenceExact)
	}

	for _, line := range strings.Split(in.text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > minTitleLength {
			return found(head(line, maxTitleLength), confidenceTitle)
		}
	}

	return model.Missing(model.FieldBillName)
}

func docketNumberRule(in *ruleInput) model.FieldResult {
	if m := docketPattern.FindString(in.text); m != "" {
		return found(m, confidenceExact)
	}
	return model.Missing(model.FieldDocketNumber)
}

// jurisdictionRule trusts the publishing host over text mentions
func jurisdictionRule(in *ruleInput) model.FieldResult {
	if in.host != "" {
		for _, a := range agencies {
			for _, h := range a.hosts {
				if in.host == h || strings.HasSuffix(in.host, "."+h) {
					return found(a.name, confidenceExact)
				}
			}
		}
	}

	opening := head(in.text, acronymWindow)
	for _, a := range agencies {
		if a.token.MatchString(opening) {
			return found(a.name, confidenceExact)
		}
	}

	lead := head(in.text, agencyNameWindow)
	for _, a := range agencies {
		for _, full := range a.fullNames {
			if strings.Contains(lead, full) {
				return found(a.name, confidenceSection)
			}
		}
	}
	if m := departmentPat.FindString(lead); m != "" {
		return found(m, confidenceSection)
	}

	return found("Federal", confidenceDefault)
}

func overviewRule(in *ruleInput) model.FieldResult {
	for _, block := range paragraphs(in.text) {
		if utf8.RuneCountInString(block) > minOverviewLength {
			return found(clip(block, maxOverviewLength), confidenceSection)
		}
	}
	return model.Missing(model.FieldOverview)
}

func requirementsRule(in *ruleInput) model.FieldResult {
	return sentenceRule(in, model.FieldRequirements, requirementPattern, 3)
}

func penaltiesRule(in *ruleInput) model.FieldResult {
	return sentenceRule(in, model.FieldPenalties, penaltyPattern, 2)
}

func exemptionsRule(in *ruleInput) model.FieldResult {
	return sentenceRule(in, model.FieldExemptions, exemptionPattern, 2)
}

func sentenceRule(in *ruleInput, name model.FieldName, pattern *regexp.Regexp, limit int) model.FieldResult {
	matches := in.matching(pattern.MatchString, limit)
	if len(matches) == 0 {
		return model.Missing(name)
	}
	return found(strings.Join(matches, sentenceSeparator), confidenceSentences)
}

func keyDatesRule(in *ruleInput) model.FieldResult {
	seen := make(map[string]bool)
	var dates []string

	for _, p := range datePatterns {
		for _, m := range p.FindAllString(in.text, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			dates = append(dates, m)
		}
	}

	if len(dates) == 0 {
		return model.Missing(model.FieldKeyDates)
	}
	if len(dates) > maxDates {
		dates = dates[:maxDates]
	}
	return found(strings.Join(dates, dateSeparator), confidenceDates)
}

func coveredProductsRule(in *ruleInput) model.FieldResult {
	for _, s := range splitSentences(head(in.text, productsWindow)) {
		if productPattern.MatchString(s) {
			return found(head(s, maxProductsLength), confidenceSection)
		}
	}
	return model.Missing(model.FieldCoveredProducts)
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
