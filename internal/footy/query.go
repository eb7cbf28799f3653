// Package footy is the AFL data layer: request parameters and their
// validation, the provider contract, and the service that routes a query to
// the provider serving its source.
package footy

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Dataset names a category of AFL data.
type Dataset string

const (
	Fixture       Dataset = "fixture"
	Ladder        Dataset = "ladder"
	Lineup        Dataset = "lineup"
	PlayerDetails Dataset = "player_details"
	PlayerStats   Dataset = "player_statistics"
	Results       Dataset = "results"
)

// Datasets lists every dataset in route order.
var Datasets = []Dataset{Fixture, Ladder, Lineup, PlayerDetails, PlayerStats, Results}

// ParseDataset accepts a dataset name. "player_stats" is accepted as an alias.
func ParseDataset(s string) (Dataset, error) {
	s = strings.ReplaceAll(strings.ToLower(s), "-", "_")
	if s == "player_stats" {
		return PlayerStats, nil
	}
	for _, d := range Datasets {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}

// Source names.
const (
	SourceAFL       = "AFL"
	SourceSquiggle  = "squiggle"
	SourceFootywire = "footywire"
	SourceFryzigg   = "fryzigg"
	SourceAFLTables = "afltables"
)

// Competition codes.
const (
	CompMen   = "AFLM"
	CompWomen = "AFLW"
)

// Bounds on accepted parameters.
const (
	FirstSeason = 1897
	MinRound    = 0
	MaxRound    = 30
)

var sourceAllowList = map[Dataset][]string{
	Fixture:       {SourceAFL, SourceFootywire, SourceSquiggle},
	Ladder:        {SourceAFL, SourceSquiggle, SourceAFLTables},
	Lineup:        {SourceAFL},
	PlayerDetails: {SourceAFL, SourceFootywire, SourceAFLTables},
	PlayerStats:   {SourceAFL, SourceFootywire, SourceFryzigg, SourceAFLTables},
	Results:       {SourceAFL, SourceFootywire, SourceFryzigg, SourceAFLTables, SourceSquiggle},
}

// AllowedSources returns the sources a dataset may be fetched from.
func AllowedSources(d Dataset) []string {
	return slices.Clone(sourceAllowList[d])
}

// AllowedCompetitions returns the competitions a source can serve for a dataset.
func AllowedCompetitions(d Dataset, source string) []string {
	both := []string{CompMen, CompWomen}
	switch {
	case source == SourceAFL:
		return both
	case d == Ladder && source == SourceFryzigg:
		return both
	default:
		return []string{CompMen}
	}
}

// Query is a validated request for one dataset.
type Query struct {
	Dataset     Dataset
	Season      int
	Round       *int // nil means every round
	Source      string
	Competition string
	Team        string
	Current     bool

	// Warnings collects adjustments made to the request (e.g. a dropped round).
	Warnings []string
}

// RoundString renders the round for logs and keys; "all" when unset.
func (q Query) RoundString() string {
	if q.Round == nil {
		return "all"
	}
	return strconv.Itoa(*q.Round)
}

// Key identifies the query for caching and snapshots. player_details keys
// carry the season only when current is set; otherwise every season is
// returned and the season does not change the result.
func (q Query) Key() string {
	switch q.Dataset {
	case PlayerDetails:
		scope := "all"
		if q.Current {
			scope = strconv.Itoa(q.Season)
		}
		return fmt.Sprintf("%s:%s:%s:%s:%s", q.Dataset, q.Source, q.Competition, strings.ToLower(q.Team), scope)
	default:
		return fmt.Sprintf("%s:%s:%s:%d:%s", q.Dataset, q.Source, q.Competition, q.Season, q.RoundString())
	}
}

// ParseQuery reads and validates the parameters for d. now supplies the
// default season and the upper season bound.
//
// Validation order is season, round, source, competition: the competition
// allow-list depends on the source.
func ParseQuery(d Dataset, params url.Values, now time.Time) (Query, error) {
	if _, ok := sourceAllowList[d]; !ok {
		return Query{}, fmt.Errorf("unknown dataset %q", d)
	}
	q := Query{Dataset: d}

	season, err := parseSeason(params, now)
	if err != nil {
		return Query{}, err
	}
	q.Season = season

	source := params.Get("source")
	if source == "" {
		source = SourceAFL
	}

	if err := parseRound(&q, params, source); err != nil {
		return Query{}, err
	}

	allowed := sourceAllowList[d]
	if !slices.Contains(allowed, source) {
		return Query{}, &InvalidSourceError{Value: source, Allowed: slices.Clone(allowed)}
	}
	q.Source = source

	comp := params.Get("competition")
	if comp == "" {
		comp = params.Get("comp")
	}
	if comp == "" {
		comp = CompMen
	}
	comps := AllowedCompetitions(d, source)
	if !slices.Contains(comps, strings.ToUpper(comp)) {
		return Query{}, &InvalidCompetitionError{Value: comp, Allowed: comps}
	}
	q.Competition = strings.ToUpper(comp)

	if d == PlayerDetails {
		q.Team = strings.TrimSpace(params.Get("team"))
		q.Current = true
		if v := params.Get("current"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Query{}, &InvalidParameterError{Name: "current", Value: v, Hint: "Please enter true or false."}
			}
			q.Current = b
		}
	}

	return q, nil
}

func parseSeason(params url.Values, now time.Time) (int, error) {
	raw := strings.TrimSpace(params.Get("season"))
	if raw == "" {
		return now.Year(), nil
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season < FirstSeason || season > now.Year()+1 {
		return 0, &InvalidSeasonError{Value: raw}
	}
	return season, nil
}

// parseRound applies the per-dataset round defaults:
//
//   - fixture: absent → 1; empty → every round for AFL, round 1 otherwise
//   - player_statistics: absent/empty → every round; a round for a non-AFL
//     source is dropped with a warning
//   - ladder, lineup, results: absent/empty → 1
//   - player_details: no round
func parseRound(q *Query, params url.Values, source string) error {
	if q.Dataset == PlayerDetails {
		return nil
	}
	present := params.Has("round_number")
	raw := strings.TrimSpace(params.Get("round_number"))

	if raw == "" {
		switch q.Dataset {
		case Fixture:
			if present && source == SourceAFL {
				return nil
			}
			q.Round = intPtr(1)
		case PlayerStats:
		default:
			q.Round = intPtr(1)
		}
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < MinRound || n > MaxRound {
		return &InvalidRoundNumberError{Value: raw}
	}

	if q.Dataset == PlayerStats && source != SourceAFL {
		q.Warnings = append(q.Warnings,
			"round_number is currently only supported with the 'AFL' source. Returning data for all rounds in specified season.")
		return nil
	}
	q.Round = intPtr(n)
	return nil
}

func intPtr(n int) *int { return &n }
