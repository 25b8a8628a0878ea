// Package matching scores caregivers against a case and returns a ranked
// shortlist for the scheduler.
package matching

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/careops/referralos/pkg/models"
)

// Default scoring weights. City and an exact skill hit dominate; general
// home care skills and availability break ties.
const (
	DefaultCityPoints         = 40
	DefaultExactSkillPoints   = 40
	DefaultGeneralSkillPoints = 20
	DefaultFlexiblePoints     = 20
	DefaultPartialPoints      = 10
	DefaultMinScore           = 30
	DefaultMaxMatches         = 5
)

// defaultGeneralSkills are skill fragments that count as general home care
// competence when no exact service skill is present.
var defaultGeneralSkills = []string{"ECM", "HOME", "CARE"}

// Match is one scored caregiver candidate.
type Match struct {
	CaregiverID  string   `json:"caregiver_id"`
	City         string   `json:"city,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Language     string   `json:"language,omitempty"`
	Score        int      `json:"score"`
	Reasons      []string `json:"reasons,omitempty"`
}

// Matcher ranks active caregivers for a case. Scoring is deterministic:
// equal scores keep the input caregiver order.
type Matcher struct {
	logger *slog.Logger

	cityPoints         int
	exactSkillPoints   int
	generalSkillPoints int
	flexiblePoints     int
	partialPoints      int
	minScore           int
	maxMatches         int
	generalSkills      []string
}

type Option func(*Matcher)

func WithMinScore(score int) Option {
	return func(m *Matcher) { m.minScore = score }
}

func WithMaxMatches(limit int) Option {
	return func(m *Matcher) { m.maxMatches = limit }
}

func WithGeneralSkills(skills ...string) Option {
	return func(m *Matcher) { m.generalSkills = skills }
}

func NewMatcher(logger *slog.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		logger:             logger.With("module", "matching"),
		cityPoints:         DefaultCityPoints,
		exactSkillPoints:   DefaultExactSkillPoints,
		generalSkillPoints: DefaultGeneralSkillPoints,
		flexiblePoints:     DefaultFlexiblePoints,
		partialPoints:      DefaultPartialPoints,
		minScore:           DefaultMinScore,
		maxMatches:         DefaultMaxMatches,
		generalSkills:      defaultGeneralSkills,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Match scores every active caregiver against the case and returns the top
// candidates at or above the minimum score, highest first.
func (m *Matcher) Match(c models.Case, caregivers []models.Caregiver) []Match {
	city := strings.TrimSpace(c.Patient.City)
	service := strings.TrimSpace(c.Referral.RequestedService)

	matches := make([]Match, 0)

	for _, caregiver := range caregivers {
		if !caregiver.Active {
			continue
		}

		match := Match{
			CaregiverID:  caregiver.ID,
			City:         caregiver.City,
			Availability: caregiver.Availability,
			Language:     caregiver.Language,
		}

		if city != "" && strings.TrimSpace(caregiver.City) == city {
			match.Score += m.cityPoints
			match.Reasons = append(match.Reasons, "Same city: "+city)
		}

		switch {
		case service != "" && hasSkillTag(caregiver.Skills, service):
			match.Score += m.exactSkillPoints
			match.Reasons = append(match.Reasons, "Has skill: "+service)
		case m.hasGeneralSkill(caregiver.Skills):
			match.Score += m.generalSkillPoints
			match.Reasons = append(match.Reasons, "Has general home care skills")
		}

		switch {
		case caregiver.FlexibleAvailability():
			match.Score += m.flexiblePoints
			match.Reasons = append(match.Reasons, "Good availability: "+caregiver.Availability)
		case caregiver.Availability != "":
			match.Score += m.partialPoints
		}

		if match.Score >= m.minScore {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > m.maxMatches {
		matches = matches[:m.maxMatches]
	}

	m.logger.Debug("Scored caregivers for case",
		"case_id", c.ID, "candidates", len(caregivers), "matches", len(matches))

	return matches
}

// Recommend summarizes the shortlist as a human-readable assignment hint.
func (m *Matcher) Recommend(caseID string, matches []Match) string {
	switch {
	case len(matches) == 0:
		return fmt.Sprintf("NO MATCHES: No caregivers found in the area for %s", caseID)
	case len(matches) >= 3:
		return fmt.Sprintf("EXCELLENT: Found %d matching caregivers. Top match: %s (%d%%)",
			len(matches), matches[0].CaregiverID, matches[0].Score)
	default:
		return fmt.Sprintf("GOOD: Found %d caregiver(s). Assign %s (score: %d%%)",
			len(matches), matches[0].CaregiverID, matches[0].Score)
	}
}

// hasSkillTag reports whether any skill tag contains the service,
// case-insensitively. A caregiver tagged "ECM Care" covers service "ECM".
func hasSkillTag(skills []string, service string) bool {
	service = strings.ToUpper(service)

	for _, skill := range skills {
		if strings.Contains(strings.ToUpper(skill), service) {
			return true
		}
	}

	return false
}

func (m *Matcher) hasGeneralSkill(skills []string) bool {
	for _, general := range m.generalSkills {
		if hasSkillTag(skills, general) {
			return true
		}
	}

	return false
}
