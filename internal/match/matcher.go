package match

import (
	"sort"
	"strings"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/model"
)

// DefaultThreshold is the minimum normalized score a candidate must reach
// to be reported. An explicit service-request-id match bypasses it.
const DefaultThreshold = 0.6

// Weights configures the relative importance of each identity component.
// These are tuning parameters, not semantic invariants; the defaults mirror
// the values the matcher was calibrated with in production.
type Weights struct {
	Name     float64
	Email    float64
	Phone    float64
	Location float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{Name: 1.5, Email: 1.5, Phone: 1.25, Location: 0.75}
}

// Matcher scores candidate service records against a parsed identity.
// It is a pure function over its inputs and safe for concurrent use.
type Matcher struct {
	weights   Weights
	threshold float64
}

// New returns a Matcher with the given weights and acceptance threshold.
func New(w Weights, threshold float64) *Matcher {
	return &Matcher{weights: w, threshold: threshold}
}

// NewDefault returns a Matcher with production weights and threshold.
func NewDefault() *Matcher {
	return New(DefaultWeights(), DefaultThreshold)
}

// Match scores every record against the identity and returns the accepted
// candidates sorted by score descending, ties broken by creation time
// descending (most recent first).
//
// Each optional identity component contributes a weighted similarity term
// only when the component is supplied; the final score divides by the sum
// of the weights actually applied, so partial identities are judged purely
// on the fields they carry. An identity with no populated fields matches
// nothing. A supplied ServiceRequestID equal to a record's id short-circuits
// that record to score 1.0 regardless of the other fields.
func (m *Matcher) Match(id model.Identity, records []model.ServiceRecord) []model.MatchResult {
	var results []model.MatchResult

	for _, rec := range records {
		if id.ServiceRequestID != "" && rec.ID == id.ServiceRequestID {
			results = append(results, model.MatchResult{
				Score:      1.0,
				Record:     rec,
				Components: map[string]float64{"explicit_id": 1.0},
			})
			continue
		}

		score, components, ok := m.scoreRecord(id, rec)
		if !ok || score < m.threshold {
			continue
		}
		results = append(results, model.MatchResult{
			Score:      score,
			Record:     rec,
			Components: components,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.CreatedAt().After(results[j].Record.CreatedAt())
	})

	return results
}

// scoreRecord computes the normalized score for a single candidate.
// ok is false when the identity supplied no scorable field at all.
func (m *Matcher) scoreRecord(id model.Identity, rec model.ServiceRecord) (float64, map[string]float64, bool) {
	var sum, totalWeight float64
	components := make(map[string]float64, 4)

	nameInputs := nonEmpty(id.FullName, id.ContactPerson, id.Company)
	if len(nameInputs) > 0 {
		nameScore := 0.0
		for _, input := range nameInputs {
			for _, target := range []string{rec.CustomerName, rec.ContactName} {
				if s := Similarity(input, target); s > nameScore {
					nameScore = s
				}
			}
		}
		sum += nameScore * m.weights.Name
		totalWeight += m.weights.Name
		components["name"] = nameScore * m.weights.Name
	}

	if id.Email != "" {
		input := strings.ToLower(strings.TrimSpace(id.Email))
		emailScore := 0.0
		for _, addr := range rec.EmailAddresses() {
			if s := Similarity(input, addr); s > emailScore {
				emailScore = s
			}
		}
		sum += emailScore * m.weights.Email
		totalWeight += m.weights.Email
		components["email"] = emailScore * m.weights.Email
	}

	if id.PhoneNumber != "" {
		phoneScore := Similarity(id.PhoneNumber, rec.ContactPhone)
		if s := Similarity(id.PhoneNumber, rec.ContactPhoneMobile); s > phoneScore {
			phoneScore = s
		}
		sum += phoneScore * m.weights.Phone
		totalWeight += m.weights.Phone
		components["phone"] = phoneScore * m.weights.Phone
	}

	if id.Location != "" {
		locationScore := Similarity(id.Location, rec.LocationLine())
		sum += locationScore * m.weights.Location
		totalWeight += m.weights.Location
		components["location"] = locationScore * m.weights.Location
	}

	if totalWeight == 0 {
		return 0, nil, false
	}
	return sum / totalWeight, components, true
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
