package afl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

const (
	statusConcluded = "CONCLUDED"
	firstAPISeason  = 2012
)

// Provider serves every dataset for the "AFL" source.
type Provider struct {
	client  *Client
	logger  *slog.Logger
	fanout  int
	compIDs sync.Map // competition code → id
}

// New creates the AFL provider. fanout bounds concurrent per-match requests.
func New(client *Client, fanout int, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if fanout <= 0 {
		fanout = 4
	}
	return &Provider{client: client, logger: logger, fanout: fanout}
}

func (p *Provider) Name() string { return footy.SourceAFL }

func (p *Provider) Supports(d footy.Dataset) bool { return true }

func (p *Provider) Fetch(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	switch q.Dataset {
	case footy.Fixture:
		return p.fixture(ctx, q, false)
	case footy.Results:
		return p.fixture(ctx, q, true)
	case footy.Ladder:
		return p.ladder(ctx, q)
	case footy.Lineup:
		return p.lineup(ctx, q)
	case footy.PlayerStats:
		return p.playerStats(ctx, q)
	case footy.PlayerDetails:
		return p.playerDetails(ctx, q)
	default:
		return nil, fmt.Errorf("dataset %q: %w", q.Dataset, footy.ErrSourceUnavailable)
	}
}

// seasonMatches resolves competition and season and lists the matches.
func (p *Provider) seasonMatches(ctx context.Context, q footy.Query) ([]map[string]any, error) {
	compID, err := p.competitionID(ctx, q.Competition)
	if err != nil {
		return nil, err
	}
	cs, err := p.compSeasonFor(ctx, compID, q.Season)
	if err != nil {
		return nil, err
	}
	return p.matchList(ctx, compID, cs.ID, q.Round)
}

func concluded(matches []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		if fieldString(m, "status") == statusConcluded {
			out = append(out, m)
		}
	}
	return out
}

func (p *Provider) fixture(ctx context.Context, q footy.Query, onlyConcluded bool) (*frame.Frame, error) {
	matches, err := p.seasonMatches(ctx, q)
	if err != nil {
		return nil, err
	}
	if onlyConcluded {
		matches = concluded(matches)
	}
	return frame.FromRecords(matches), nil
}

func (p *Provider) ladder(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	compID, err := p.competitionID(ctx, q.Competition)
	if err != nil {
		return nil, err
	}
	cs, err := p.compSeasonFor(ctx, compID, q.Season)
	if err != nil {
		return nil, err
	}
	roundNumber := 1
	if q.Round != nil {
		roundNumber = *q.Round
	}
	rid, err := p.roundID(ctx, cs.ID, roundNumber)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Ladders []struct {
			ConferenceName string           `json:"conferenceName"`
			Entries        []map[string]any `json:"entries"`
		} `json:"ladders"`
	}
	path := fmt.Sprintf("/compseasons/%d/ladders", cs.ID)
	if err := p.client.api(ctx, path, url.Values{"roundId": {strconv.Itoa(rid)}}, &resp); err != nil {
		return nil, fmt.Errorf("ladder: %w", err)
	}

	frames := make([]*frame.Frame, 0, len(resp.Ladders))
	for _, l := range resp.Ladders {
		f := frame.FromRecords(l.Entries)
		if len(resp.Ladders) > 1 {
			f.WithConstant("conferenceName", l.ConferenceName)
		}
		frames = append(frames, f)
	}
	out := frame.Bind(frames...)
	out.WithConstant("season", q.Season)
	out.WithConstant("round_number", roundNumber)
	return out, nil
}

// perMatch runs fn for each match with bounded concurrency and binds the
// resulting frames in match order.
func (p *Provider) perMatch(ctx context.Context, matches []map[string]any, fn func(ctx context.Context, m map[string]any) (*frame.Frame, error)) (*frame.Frame, error) {
	results := make([]*frame.Frame, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fanout)
	for i, m := range matches {
		g.Go(func() error {
			f, err := fn(ctx, m)
			if err != nil {
				return fmt.Errorf("match %s: %w", fieldString(m, "providerId"), err)
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame.Bind(results...), nil
}

// matchColumns are copied from the match onto every per-player row.
var matchColumns = [][]string{
	{"providerId"},
	{"utcStartTime"},
	{"round", "roundNumber"},
	{"home", "team", "name"},
	{"away", "team", "name"},
	{"venue", "name"},
}

func withMatchColumns(f *frame.Frame, m map[string]any) *frame.Frame {
	for _, path := range matchColumns {
		name := "match." + strings.Join(path, ".")
		f.WithConstant(name, field(m, path...))
	}
	return f
}

// rosterTeam is one side of a match roster. The CFS API has used both
// "positions" and "players" for the player list.
type rosterTeam struct {
	TeamName  string           `json:"teamName"`
	TeamID    string           `json:"teamId"`
	Positions []map[string]any `json:"positions"`
	Players   []map[string]any `json:"players"`
}

func (t rosterTeam) entries() []map[string]any {
	if len(t.Positions) > 0 {
		return t.Positions
	}
	return t.Players
}

func (p *Provider) lineup(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	matches, err := p.seasonMatches(ctx, q)
	if err != nil {
		return nil, err
	}
	return p.perMatch(ctx, matches, func(ctx context.Context, m map[string]any) (*frame.Frame, error) {
		var resp struct {
			HomeTeam rosterTeam `json:"homeTeam"`
			AwayTeam rosterTeam `json:"awayTeam"`
		}
		if err := p.client.cfs(ctx, "/matchRoster/full/"+fieldString(m, "providerId"), &resp); err != nil {
			return nil, err
		}
		sides := []struct {
			status string
			team   rosterTeam
		}{{"home", resp.HomeTeam}, {"away", resp.AwayTeam}}

		frames := make([]*frame.Frame, 0, 2)
		for _, s := range sides {
			f := frame.FromRecords(s.team.entries())
			f.WithConstant("teamStatus", s.status)
			f.WithConstant("teamName", s.team.TeamName)
			f.WithConstant("teamId", s.team.TeamID)
			frames = append(frames, f)
		}
		return withMatchColumns(frame.Bind(frames...), m), nil
	})
}

func (p *Provider) playerStats(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	matches, err := p.seasonMatches(ctx, q)
	if err != nil {
		return nil, err
	}
	matches = concluded(matches)
	p.logger.Debug("Fetching AFL player stats", "season", q.Season, "round", q.RoundString(), "matches", len(matches))

	return p.perMatch(ctx, matches, func(ctx context.Context, m map[string]any) (*frame.Frame, error) {
		var resp struct {
			Home []map[string]any `json:"homeTeamPlayerStats"`
			Away []map[string]any `json:"awayTeamPlayerStats"`
		}
		if err := p.client.cfs(ctx, "/playerStats/match/"+fieldString(m, "providerId"), &resp); err != nil {
			return nil, err
		}
		home := frame.FromRecords(resp.Home).WithConstant("teamStatus", "home")
		away := frame.FromRecords(resp.Away).WithConstant("teamStatus", "away")
		return withMatchColumns(frame.Bind(home, away), m), nil
	})
}

func (p *Provider) playerDetails(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	compID, err := p.competitionID(ctx, q.Competition)
	if err != nil {
		return nil, err
	}
	seasons, err := p.compSeasons(ctx, compID)
	if err != nil {
		return nil, err
	}
	if len(seasons) == 0 {
		return frame.New(), nil
	}

	var wanted []compSeason
	if q.Current {
		wanted = []compSeason{seasons[0]}
		for _, cs := range seasons {
			if cs.Year() == q.Season {
				wanted = []compSeason{cs}
				break
			}
		}
	} else {
		for _, cs := range seasons {
			if cs.Year() >= firstAPISeason {
				wanted = append(wanted, cs)
			}
		}
	}

	allTeams, err := p.teams(ctx, q.Competition)
	if err != nil {
		return nil, err
	}
	teams := allTeams
	if q.Team != "" {
		teams = nil
		for _, t := range allTeams {
			if t.matches(q.Team) {
				teams = append(teams, t)
			}
		}
		if len(teams) == 0 {
			return nil, fmt.Errorf("unknown team %q", q.Team)
		}
	}

	type job struct {
		cs compSeason
		t  team
	}
	jobs := make([]job, 0, len(wanted)*len(teams))
	for _, cs := range wanted {
		for _, t := range teams {
			jobs = append(jobs, job{cs, t})
		}
	}

	results := make([]*frame.Frame, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fanout)
	for i, j := range jobs {
		g.Go(func() error {
			var resp struct {
				Players []map[string]any `json:"players"`
			}
			params := url.Values{
				"pageSize":     {"1000"},
				"teamId":       {strconv.Itoa(j.t.ID)},
				"compSeasonId": {strconv.Itoa(j.cs.ID)},
			}
			if err := p.client.api(gctx, "/players", params, &resp); err != nil {
				return fmt.Errorf("players %s %d: %w", j.t.Name, j.cs.Year(), err)
			}
			f := frame.FromRecords(resp.Players)
			f.WithConstant("team", j.t.Name)
			f.WithConstant("season", j.cs.Year())
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame.Bind(results...), nil
}
