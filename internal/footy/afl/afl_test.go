package afl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

const (
	competitionsJSON = `{"competitions":[{"id":1,"code":"AFL","name":"AFL Premiership"},{"id":3,"code":"AFLW","name":"AFL Womens"}]}`
	compSeasonsJSON  = `{"compSeasons":[
		{"id":52,"providerId":"CD_S2023014","name":"2023 Toyota AFL Premiership"},
		{"id":62,"providerId":"CD_S2024014","name":"2024 Toyota AFL Premiership"}]}`
	roundsJSON  = `{"rounds":[{"id":900,"roundNumber":0,"name":"Opening Round"},{"id":901,"roundNumber":1,"name":"Round 1"}]}`
	matchesJSON = `{"matches":[
		{"id":1,"providerId":"CD_M1","status":"CONCLUDED","utcStartTime":"2024-03-14T08:30:00.000+0000",
		 "round":{"roundNumber":1},"venue":{"name":"MCG"},
		 "home":{"team":{"name":"Carlton"},"score":{"totalScore":86}},
		 "away":{"team":{"name":"Richmond"},"score":{"totalScore":81}}},
		{"id":2,"providerId":"CD_M2","status":"SCHEDULED","utcStartTime":"2024-03-15T08:40:00.000+0000",
		 "round":{"roundNumber":1},"venue":{"name":"Marvel Stadium"},
		 "home":{"team":{"name":"Essendon"}},"away":{"team":{"name":"Hawthorn"}}}]}`
	ladderJSON = `{"ladders":[{"entries":[
		{"position":1,"team":{"name":"Carlton"},"thisSeasonRecord":{"aggregatePoints":4,"percentage":106.2}},
		{"position":2,"team":{"name":"Richmond"},"thisSeasonRecord":{"aggregatePoints":0,"percentage":94.1}}]}]}`
	playerStatsJSON = `{
		"homeTeamPlayerStats":[{"player":{"playerId":"CD_I1","givenName":"Patrick","surname":"Cripps"},"playerStats":{"stats":{"goals":1,"disposals":31}}}],
		"awayTeamPlayerStats":[{"player":{"playerId":"CD_I2","givenName":"Dustin","surname":"Martin"},"playerStats":{"stats":{"goals":2,"disposals":18}}}]}`
	teamsJSON = `{"teams":[
		{"id":3,"providerId":"CD_T30","name":"Carlton","abbreviation":"CARL","nickname":"Blues","club":{"name":"Carlton Football Club"}},
		{"id":10,"providerId":"CD_T120","name":"Geelong Cats","abbreviation":"GEEL","nickname":"Cats","club":{"name":"Geelong Football Club"}}]}`
)

type fakeAFL struct {
	*httptest.Server
	tokenCalls atomic.Int32
	lastQuery  atomic.Value
}

func newFakeAFL(t *testing.T) *fakeAFL {
	t.Helper()
	f := &fakeAFL{}
	mux := http.NewServeMux()
	write := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.lastQuery.Store(r.URL.RawQuery)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	authed := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(tokenHeader) != "tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			write(body)(w, r)
		}
	}

	mux.HandleFunc("GET /afl/v2/competitions", write(competitionsJSON))
	mux.HandleFunc("GET /afl/v2/competitions/1/compseasons", write(compSeasonsJSON))
	mux.HandleFunc("GET /afl/v2/compseasons/62/rounds", write(roundsJSON))
	mux.HandleFunc("GET /afl/v2/compseasons/62/ladders", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("roundId") != "901" {
			http.Error(w, "bad round", http.StatusBadRequest)
			return
		}
		write(ladderJSON)(w, r)
	})
	mux.HandleFunc("GET /afl/v2/matches", write(matchesJSON))
	mux.HandleFunc("GET /afl/v2/teams", write(teamsJSON))
	mux.HandleFunc("GET /afl/v2/players", func(w http.ResponseWriter, r *http.Request) {
		body := `{"players":[{"id":7,"firstName":"Tom","surname":"Stewart","jumperNumber":44,"teamId":` +
			r.URL.Query().Get("teamId") + `}]}`
		write(body)(w, r)
	})
	mux.HandleFunc("POST /cfs/afl/WMCTok", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_, _ = w.Write([]byte(`{"token":"tok-123"}`))
	})
	mux.HandleFunc("GET /cfs/afl/playerStats/match/{id}", authed(playerStatsJSON))
	mux.HandleFunc("GET /cfs/afl/matchRoster/full/{id}", authed(`{
		"homeTeam":{"teamName":"Carlton","teamId":"CD_T30","positions":[{"position":"C","player":{"playerId":"CD_I1"}}]},
		"awayTeam":{"teamName":"Richmond","teamId":"CD_T140","players":[{"position":"FF","player":{"playerId":"CD_I2"}}]}}`))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestProvider(t *testing.T) (*Provider, *fakeAFL) {
	t.Helper()
	srv := newFakeAFL(t)
	client := NewClient(srv.URL+"/afl/v2", srv.URL+"/cfs/afl", 60000, 5*time.Second, nil)
	return New(client, 2, nil), srv
}

func query(d footy.Dataset, round *int) footy.Query {
	return footy.Query{Dataset: d, Season: 2024, Round: round, Source: footy.SourceAFL, Competition: footy.CompMen, Current: true}
}

func one() *int { n := 1; return &n }

func TestFixture(t *testing.T) {
	p, srv := newTestProvider(t)

	f, err := p.Fetch(context.Background(), query(footy.Fixture, one()))
	require.NoError(t, err)
	assert.Equal(t, 2, f.NRow())
	assert.Equal(t, "Carlton", f.Value(0, "home.team.name"))
	assert.True(t, frame.IsNA(f.Value(1, "home.score.totalScore")))
	assert.Contains(t, srv.lastQuery.Load(), "roundNumber=1")
	assert.Contains(t, srv.lastQuery.Load(), "compSeasonId=62")
}

func TestFixtureAllRounds(t *testing.T) {
	p, srv := newTestProvider(t)

	_, err := p.Fetch(context.Background(), query(footy.Fixture, nil))
	require.NoError(t, err)
	assert.NotContains(t, srv.lastQuery.Load(), "roundNumber")
}

func TestResultsOnlyConcluded(t *testing.T) {
	p, _ := newTestProvider(t)

	f, err := p.Fetch(context.Background(), query(footy.Results, one()))
	require.NoError(t, err)
	require.Equal(t, 1, f.NRow())
	assert.Equal(t, "CONCLUDED", f.Value(0, "status"))
}

func TestLadder(t *testing.T) {
	p, _ := newTestProvider(t)

	f, err := p.Fetch(context.Background(), query(footy.Ladder, one()))
	require.NoError(t, err)
	require.Equal(t, 2, f.NRow())
	assert.Equal(t, "Richmond", f.Value(1, "team.name"))
	assert.Equal(t, 2024, f.Value(0, "season"))
	assert.Equal(t, 1, f.Value(1, "round_number"))

	pct, ok := frame.Float(f.Value(0, "thisSeasonRecord.percentage"))
	require.True(t, ok)
	assert.InDelta(t, 106.2, pct, 1e-9)
}

func TestUnknownSeason(t *testing.T) {
	p, _ := newTestProvider(t)

	q := query(footy.Fixture, one())
	q.Season = 1990
	_, err := p.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1990")
}

func TestPlayerStatsUsesTokenOnce(t *testing.T) {
	p, srv := newTestProvider(t)

	f, err := p.Fetch(context.Background(), query(footy.PlayerStats, one()))
	require.NoError(t, err)

	// Only the concluded match is fetched: one home and one away row.
	require.Equal(t, 2, f.NRow())
	assert.Equal(t, "home", f.Value(0, "teamStatus"))
	assert.Equal(t, "Martin", f.Value(1, "player.surname"))
	assert.Equal(t, "CD_M1", f.Value(1, "match.providerId"))
	assert.Equal(t, "MCG", f.Value(0, "match.venue.name"))

	_, err = p.Fetch(context.Background(), query(footy.PlayerStats, one()))
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.tokenCalls.Load())
}

func TestLineup(t *testing.T) {
	p, _ := newTestProvider(t)

	f, err := p.Fetch(context.Background(), query(footy.Lineup, one()))
	require.NoError(t, err)

	// Two matches, one player per side each.
	require.Equal(t, 4, f.NRow())
	assert.Equal(t, "Carlton", f.Value(0, "teamName"))
	assert.Equal(t, "FF", f.Value(1, "position"))
	assert.Equal(t, "CD_M2", f.Value(3, "match.providerId"))
}

func TestPlayerDetailsTeamFilter(t *testing.T) {
	p, _ := newTestProvider(t)

	q := query(footy.PlayerDetails, nil)
	q.Team = "cats"
	f, err := p.Fetch(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, f.NRow())
	assert.Equal(t, "Geelong Cats", f.Value(0, "team"))
	assert.Equal(t, 2024, f.Value(0, "season"))
	id, ok := frame.Float(f.Value(0, "teamId"))
	require.True(t, ok)
	assert.Equal(t, 10.0, id)

	q.Team = "Fitzroy"
	_, err = p.Fetch(context.Background(), q)
	assert.ErrorContains(t, err, "unknown team")
}

func TestPlayerDetailsAllSeasons(t *testing.T) {
	p, _ := newTestProvider(t)

	q := query(footy.PlayerDetails, nil)
	q.Current = false
	f, err := p.Fetch(context.Background(), q)
	require.NoError(t, err)

	// Two teams across two seasons.
	assert.Equal(t, 4, f.NRow())
}

func TestCompSeasonYear(t *testing.T) {
	assert.Equal(t, 2024, compSeason{Name: "2024 Toyota AFL Premiership"}.Year())
	assert.Equal(t, 2017, compSeason{Name: "NAB AFL Women's 2017"}.Year())
	assert.Equal(t, 0, compSeason{Name: "Preseason"}.Year())
}

func TestTeamMatches(t *testing.T) {
	tm := team{Name: "Geelong Cats", Abbreviation: "GEEL", Nickname: "Cats"}
	assert.True(t, tm.matches("geel"))
	assert.True(t, tm.matches(" Geelong Cats "))
	assert.False(t, tm.matches("Geelong"))
}
