// internal/dating/scoring.go
// Compatibility scoring between two profiles. Pure functions, no I/O.

package dating

import (
    "math"

    "github.com/amoradating/amora-backend/internal/geo"
    "github.com/amoradating/amora-backend/internal/profile"
)

// Point weights for each scoring dimension
const (
    genderGatePoints   = 30
    intentionPoints    = 20
    relationshipPoints = 15
    lifestylePoints    = 20
    familyPoints       = 15
    proximityPoints    = 10

    // The denominator always includes every dimension, proximity included,
    // so users without coordinates are never normalized upward.
    scoreDenominator = genderGatePoints + intentionPoints + relationshipPoints +
        lifestylePoints + familyPoints + proximityPoints
)

const (
    preferEveryone = "everyone"
    notSureYet     = "not-sure-yet"
    preferNotToSay = "prefer-not-to-say"
)

// ScoreBreakdown itemizes the contribution of each dimension
type ScoreBreakdown struct {
    GenderGate   float64 `json:"gender_gate"`
    Intention    float64 `json:"intention"`
    Relationship float64 `json:"relationship"`
    Lifestyle    float64 `json:"lifestyle"`
    FamilyPlans  float64 `json:"family_plans"`
    Proximity    float64 `json:"proximity"`
}

// ScoreResult is the full scoring outcome for a viewer/candidate pair
type ScoreResult struct {
    Score      float64        `json:"score"`
    MaxScore   float64        `json:"max_score"`
    Percentage int            `json:"percentage"`
    Passed     bool           `json:"passed"`
    Breakdown  ScoreBreakdown `json:"breakdown"`
    DistanceKm *float64       `json:"distance_km,omitempty"`
}

// ScoreProfiles computes the weighted compatibility between two profiles.
// The gender gate is the only hard failure: when it fails the result is
// zero with no other dimension evaluated. Every other dimension tolerates
// missing data by contributing nothing.
func ScoreProfiles(viewer, candidate *profile.Profile) *ScoreResult {
    result := &ScoreResult{MaxScore: scoreDenominator}

    if !mutualGenderMatch(viewer, candidate) {
        return result
    }

    result.Passed = true
    result.Breakdown.GenderGate = genderGatePoints
    result.Breakdown.Intention = intentionScore(
        viewer.DatingPreferences.Intention,
        candidate.DatingPreferences.Intention,
    )
    result.Breakdown.Relationship = relationshipScore(
        viewer.DatingPreferences.RelationshipType,
        candidate.DatingPreferences.RelationshipType,
    )
    result.Breakdown.Lifestyle = lifestyleScore(viewer.Lifestyle, candidate.Lifestyle)
    result.Breakdown.FamilyPlans = familyScore(
        viewer.PersonalDetails.FamilyPlans,
        candidate.PersonalDetails.FamilyPlans,
    )

    result.DistanceKm = geo.Distance(viewer.Location, candidate.Location)
    result.Breakdown.Proximity = proximityScore(result.DistanceKm)

    result.Score = result.Breakdown.GenderGate +
        result.Breakdown.Intention +
        result.Breakdown.Relationship +
        result.Breakdown.Lifestyle +
        result.Breakdown.FamilyPlans +
        result.Breakdown.Proximity

    result.Percentage = int(math.Round(100 * result.Score / result.MaxScore))

    return result
}

// mutualGenderMatch checks that each side's preferences include the other's
// gender (or the wildcard). Both directions must pass.
func mutualGenderMatch(a, b *profile.Profile) bool {
    return prefersGender(a.DatingPreferences.WhoToDate, b.BasicInfo.Gender) &&
        prefersGender(b.DatingPreferences.WhoToDate, a.BasicInfo.Gender)
}

func prefersGender(whoToDate []string, gender string) bool {
    mapped := mapGenderToPreference(gender)
    for _, pref := range whoToDate {
        if pref == preferEveryone {
            return true
        }
        if mapped != "" && pref == mapped {
            return true
        }
    }
    return false
}

// mapGenderToPreference translates a stated gender into the vocabulary used
// by the whoToDate preference set. Non-binary genders only match the
// wildcard.
func mapGenderToPreference(gender string) string {
    switch gender {
    case "man":
        return "men"
    case "woman":
        return "women"
    default:
        return ""
    }
}

// longTermIntentions groups open-ended phrasing into a coarse bucket
var longTermIntentions = map[string]bool{
    "long-term":              true,
    "long-term-relationship": true,
    "life-partner":           true,
    "marriage":               true,
}

var shortTermIntentions = map[string]bool{
    "short-term":     true,
    "casual":         true,
    "something-fun":  true,
    "nothing-serious": true,
}

var openIntentions = map[string]bool{
    "":                  true,
    "figuring-it-out":   true,
    "open-to-anything":  true,
    "not-sure":          true,
}

func intentionScore(a, b string) float64 {
    if a != "" && a == b {
        return intentionPoints
    }
    if (longTermIntentions[a] && longTermIntentions[b]) ||
        (shortTermIntentions[a] && shortTermIntentions[b]) {
        return 15
    }
    if openIntentions[a] || openIntentions[b] {
        return 10
    }
    return 0
}

func relationshipScore(a, b string) float64 {
    if a != "" && a == b {
        return relationshipPoints
    }
    return 0
}

// lifestyleScore compares the fixed lifestyle dimensions. Fields where
// either side declined to answer are excluded from the denominator.
func lifestyleScore(a, b profile.Lifestyle) float64 {
    pairs := [][2]string{
        {a.Drink, b.Drink},
        {a.SmokeTobacco, b.SmokeTobacco},
        {a.SmokeWeed, b.SmokeWeed},
        {a.Drugs, b.Drugs},
        {a.PoliticalBeliefs, b.PoliticalBeliefs},
        {a.ReligiousBeliefs, b.ReligiousBeliefs},
    }

    comparable := 0
    matches := 0
    for _, pair := range pairs {
        if !lifestyleComparable(pair[0]) || !lifestyleComparable(pair[1]) {
            continue
        }
        comparable++
        if pair[0] == pair[1] {
            matches++
        }
    }

    if comparable == 0 {
        return 0
    }
    return lifestylePoints * float64(matches) / float64(comparable)
}

func lifestyleComparable(value string) bool {
    return value != "" && value != preferNotToSay
}

func familyScore(a, b string) float64 {
    if a == "" || b == "" {
        return 0
    }
    if a == b && a != notSureYet {
        return familyPoints
    }
    if a == notSureYet || b == notSureYet {
        return 8
    }
    return 0
}

// proximityScore converts distance into a banded bonus. Unknown distance
// contributes nothing rather than propagating.
func proximityScore(distanceKm *float64) float64 {
    if distanceKm == nil {
        return 0
    }
    d := *distanceKm
    switch {
    case d < 5:
        return 10
    case d < 10:
        return 8
    case d < 20:
        return 5
    case d < 50:
        return 2
    default:
        return 0
    }
}
