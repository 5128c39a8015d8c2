// Package club projects raw search matches onto display-ready club records.
package club

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/kailas-cloud/clubsearch/internal/domain/search/result"
)

// Metadata keys read from a match payload.
const (
	KeyClubName         = "club_name"
	KeyCity             = "city"
	KeyCountry          = "country"
	KeyDivision         = "division"
	KeyDescription      = "description"
	KeyPlayingStyle     = "playing_style"
	KeyTeamCulture      = "team_culture"
	KeyFacilities       = "facilities"
	KeyRecruitmentNeeds = "recruitment_needs"
	KeyBudget           = "budget"
)

// NotAvailable replaces missing identity, location and classification fields.
const NotAvailable = "N/A"

// Club is the flattened projection of a match.
// Metadata keeps the full raw mapping so fields outside the fixed set survive.
type Club struct {
	ID               string         `json:"id"`
	Score            float64        `json:"score"`
	ClubName         string         `json:"club_name"`
	City             string         `json:"city"`
	Country          string         `json:"country"`
	Division         string         `json:"division"`
	Description      string         `json:"description"`
	PlayingStyle     string         `json:"playing_style"`
	TeamCulture      string         `json:"team_culture"`
	Facilities       string         `json:"facilities"`
	RecruitmentNeeds string         `json:"recruitment_needs"`
	Budget           string         `json:"budget"`
	Document         string         `json:"document"`
	Metadata         map[string]any `json:"metadata"`
}

// Format maps matches to clubs, preserving length and order. It has no side effects.
func Format(matches []result.Match) []Club {
	clubs := make([]Club, len(matches))
	for i := range matches {
		clubs[i] = FromMatch(&matches[i])
	}
	return clubs
}

// FromMatch flattens a single match. Absent, null or empty values fall back to
// NotAvailable for identity fields and to "" for free-text fields.
func FromMatch(m *result.Match) Club {
	meta := m.Metadata()
	return Club{
		ID:               m.ID(),
		Score:            m.Score(),
		ClubName:         field(meta, KeyClubName, NotAvailable),
		City:             field(meta, KeyCity, NotAvailable),
		Country:          field(meta, KeyCountry, NotAvailable),
		Division:         field(meta, KeyDivision, NotAvailable),
		Description:      field(meta, KeyDescription, ""),
		PlayingStyle:     field(meta, KeyPlayingStyle, ""),
		TeamCulture:      field(meta, KeyTeamCulture, ""),
		Facilities:       field(meta, KeyFacilities, ""),
		RecruitmentNeeds: field(meta, KeyRecruitmentNeeds, ""),
		Budget:           field(meta, KeyBudget, ""),
		Document:         m.Document(),
		Metadata:         maps.Clone(meta),
	}
}

func field(meta map[string]any, key, fallback string) string {
	v, ok := meta[key]
	if !ok {
		return fallback
	}
	if s := stringify(v); s != "" {
		return s
	}
	return fallback
}

// stringify renders heterogeneous payload values. Lists are joined with ", ".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
