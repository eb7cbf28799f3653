// Package rbridge serves datasets through the fitzRoy R package. Each fetch
// runs one Rscript process that calls the matching fitzRoy::fetch_* function
// and writes the resulting data frame as column-oriented JSON.
//
// This is the provider for every source without a native Go client
// (footywire, fryzigg, afltables).
package rbridge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

const DefaultPackage = "fitzRoy"

// Provider runs fitzRoy fetch functions.
type Provider struct {
	exec   Executor
	pkg    string
	logger *slog.Logger
}

// New creates the R bridge provider. pkg defaults to fitzRoy.
func New(exec Executor, pkg string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if pkg == "" {
		pkg = DefaultPackage
	}
	return &Provider{exec: exec, pkg: pkg, logger: logger}
}

func (p *Provider) Name() string { return p.pkg }

func (p *Provider) Supports(d footy.Dataset) bool {
	_, ok := functions[d]
	return ok
}

// functions maps datasets to fitzRoy fetch functions.
var functions = map[footy.Dataset]string{
	footy.Fixture:       "fetch_fixture",
	footy.Ladder:        "fetch_ladder",
	footy.Lineup:        "fetch_lineup",
	footy.PlayerDetails: "fetch_player_details",
	footy.PlayerStats:   "fetch_player_stats",
	footy.Results:       "fetch_results",
}

// Call renders the fitzRoy call for q, e.g.
// fitzRoy::fetch_ladder(season = 2024L, round_number = 3L, source = "squiggle", comp = "AFLM").
func (p *Provider) Call(q footy.Query) (string, error) {
	fn, ok := functions[q.Dataset]
	if !ok {
		return "", fmt.Errorf("dataset %q: %w", q.Dataset, footy.ErrSourceUnavailable)
	}

	var args []string
	arg := func(name, value string) { args = append(args, name+" = "+value) }

	switch q.Dataset {
	case footy.PlayerDetails:
		arg("team", rString(q.Team))
		arg("current", rBool(q.Current))
		arg("source", rString(q.Source))
		arg("comp", rString(q.Competition))
	case footy.Lineup:
		arg("season", rInt(q.Season))
		arg("round_number", rRound(q.Round))
		arg("comp", rString(q.Competition))
	default:
		arg("season", rInt(q.Season))
		arg("round_number", rRound(q.Round))
		arg("source", rString(q.Source))
		arg("comp", rString(q.Competition))
	}
	return fmt.Sprintf("%s::%s(%s)", p.pkg, fn, strings.Join(args, ", ")), nil
}

func rInt(n int) string { return strconv.Itoa(n) + "L" }

func rRound(r *int) string {
	if r == nil {
		return "NULL"
	}
	return rInt(*r)
}

// Script wraps a fetch call so the data frame is written as
// {"columns": [...], "factors": {col: [levels]}, "data": {col: [...]}}.
func (p *Provider) Script(call string) string {
	var b strings.Builder
	b.WriteString("suppressPackageStartupMessages({library(" + p.pkg + "); library(jsonlite)})\n")
	b.WriteString("df <- as.data.frame(" + call + ")\n")
	b.WriteString("out <- toJSON(list(columns = names(df), factors = lapply(Filter(is.factor, df), levels), data = df), ")
	b.WriteString(`dataframe = "columns", factor = "integer", na = "null", POSIXt = "ISO8601", Date = "ISO8601", digits = NA)` + "\n")
	b.WriteString("cat(" + rString(payloadMarker) + ", out, sep = \"\")\n")
	return b.String()
}

func (p *Provider) Fetch(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	call, err := p.Call(q)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Running R fetch", "call", call)

	payload, err := run(ctx, p.exec, p.Script(call))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call, err)
	}
	f, err := frame.DecodeColumns(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call, err)
	}
	return f, nil
}
