package afl

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/albapepper/footy-data/internal/footy"
)

// competitionCodes maps our competition names to AFL API competition codes.
var competitionCodes = map[string]string{
	footy.CompMen:   "AFL",
	footy.CompWomen: "AFLW",
}

// teamTypes maps competitions to the AFL API team type filter.
var teamTypes = map[string]string{
	footy.CompMen:   "MEN",
	footy.CompWomen: "WOMEN",
}

type competition struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type compSeason struct {
	ID         int    `json:"id"`
	ProviderID string `json:"providerId"`
	Name       string `json:"name"`
}

var yearPattern = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)

// Year extracts the season year from the comp season name
// ("2024 Toyota AFL Premiership" → 2024). Zero when absent.
func (cs compSeason) Year() int {
	m := yearPattern.FindString(cs.Name)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

type round struct {
	ID          int    `json:"id"`
	RoundNumber int    `json:"roundNumber"`
	Name        string `json:"name"`
}

type team struct {
	ID           int    `json:"id"`
	ProviderID   string `json:"providerId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Nickname     string `json:"nickname"`
	Club         struct {
		Name string `json:"name"`
	} `json:"club"`
}

// matches reports whether s names the team by name, nickname, abbreviation
// or club name, case-insensitively.
func (t team) matches(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range []string{t.Name, t.Nickname, t.Abbreviation, t.Club.Name} {
		if v != "" && strings.ToLower(v) == s {
			return true
		}
	}
	return false
}

func (p *Provider) competitionID(ctx context.Context, comp string) (int, error) {
	code, ok := competitionCodes[comp]
	if !ok {
		return 0, fmt.Errorf("unsupported competition %q", comp)
	}
	if v, ok := p.compIDs.Load(code); ok {
		return v.(int), nil
	}

	var resp struct {
		Competitions []competition `json:"competitions"`
	}
	if err := p.client.api(ctx, "/competitions", url.Values{"pageSize": {"50"}}, &resp); err != nil {
		return 0, fmt.Errorf("competitions: %w", err)
	}
	for _, c := range resp.Competitions {
		p.compIDs.Store(c.Code, c.ID)
	}
	if v, ok := p.compIDs.Load(code); ok {
		return v.(int), nil
	}
	return 0, fmt.Errorf("competition %s not listed by AFL API", code)
}

// compSeasons lists the competition's seasons, newest first.
func (p *Provider) compSeasons(ctx context.Context, compID int) ([]compSeason, error) {
	var resp struct {
		CompSeasons []compSeason `json:"compSeasons"`
	}
	path := fmt.Sprintf("/competitions/%d/compseasons", compID)
	if err := p.client.api(ctx, path, url.Values{"pageSize": {"100"}}, &resp); err != nil {
		return nil, fmt.Errorf("comp seasons: %w", err)
	}
	sort.SliceStable(resp.CompSeasons, func(i, j int) bool {
		return resp.CompSeasons[i].Year() > resp.CompSeasons[j].Year()
	})
	return resp.CompSeasons, nil
}

func (p *Provider) compSeasonFor(ctx context.Context, compID, season int) (compSeason, error) {
	seasons, err := p.compSeasons(ctx, compID)
	if err != nil {
		return compSeason{}, err
	}
	for _, cs := range seasons {
		if cs.Year() == season {
			return cs, nil
		}
	}
	return compSeason{}, fmt.Errorf("no AFL API season for %d", season)
}

func (p *Provider) roundID(ctx context.Context, compSeasonID, number int) (int, error) {
	var resp struct {
		Rounds []round `json:"rounds"`
	}
	path := fmt.Sprintf("/compseasons/%d/rounds", compSeasonID)
	if err := p.client.api(ctx, path, url.Values{"pageSize": {"50"}}, &resp); err != nil {
		return 0, fmt.Errorf("rounds: %w", err)
	}
	for _, r := range resp.Rounds {
		if r.RoundNumber == number {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("round %d not found", number)
}

func (p *Provider) teams(ctx context.Context, comp string) ([]team, error) {
	var resp struct {
		Teams []team `json:"teams"`
	}
	params := url.Values{"pageSize": {"100"}, "teamType": {teamTypes[comp]}}
	if err := p.client.api(ctx, "/teams", params, &resp); err != nil {
		return nil, fmt.Errorf("teams: %w", err)
	}
	return resp.Teams, nil
}

// matchList fetches the matches of a season, optionally one round.
func (p *Provider) matchList(ctx context.Context, compID, compSeasonID int, roundNumber *int) ([]map[string]any, error) {
	params := url.Values{
		"competitionId": {strconv.Itoa(compID)},
		"compSeasonId":  {strconv.Itoa(compSeasonID)},
		"pageSize":      {"1000"},
	}
	if roundNumber != nil {
		params.Set("roundNumber", strconv.Itoa(*roundNumber))
	}
	var resp struct {
		Matches []map[string]any `json:"matches"`
	}
	if err := p.client.api(ctx, "/matches", params, &resp); err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}
	return resp.Matches, nil
}

// field walks nested objects: field(m, "round", "roundNumber").
func field(m map[string]any, path ...string) any {
	var cur any = m
	for _, k := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func fieldString(m map[string]any, path ...string) string {
	switch v := field(m, path...).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
