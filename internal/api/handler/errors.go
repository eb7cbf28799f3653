package handler

import (
	"errors"
	"net/http"

	"github.com/albapepper/footy-data/internal/api/respond"
	"github.com/albapepper/footy-data/internal/footy"
)

// writeQueryError maps validation errors to 400 responses.
func writeQueryError(w http.ResponseWriter, err error) {
	var (
		src *footy.InvalidSourceError
		cmp *footy.InvalidCompetitionError
		rnd *footy.InvalidRoundNumberError
		sea *footy.InvalidSeasonError
		prm *footy.InvalidParameterError
	)
	switch {
	case errors.As(err, &src):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SOURCE", src.Error(), "source")
	case errors.As(err, &cmp):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_COMPETITION", cmp.Error(), "competition")
	case errors.As(err, &rnd):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_ROUND_NUMBER", rnd.Error(), "round_number")
	case errors.As(err, &sea):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SEASON", sea.Error(), "season")
	case errors.As(err, &prm):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", prm.Error(), prm.Name)
	default:
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
	}
}
