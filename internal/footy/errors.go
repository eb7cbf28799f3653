package footy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceUnavailable is returned when no configured provider can serve a
// source/dataset pair (for example an R-backed source with the bridge off).
var ErrSourceUnavailable = errors.New("source unavailable")

// InvalidSourceError reports a source outside the dataset's allow-list.
type InvalidSourceError struct {
	Value   string
	Allowed []string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("'%s' is an invalid data source. Please select one of the following: %s.",
		e.Value, strings.Join(e.Allowed, ", "))
}

// InvalidCompetitionError reports a competition the chosen source cannot serve.
type InvalidCompetitionError struct {
	Value   string
	Allowed []string
}

func (e *InvalidCompetitionError) Error() string {
	return fmt.Sprintf("'%s' is an invalid competition. Please select one of the following: %s.",
		e.Value, strings.Join(e.Allowed, ", "))
}

// InvalidRoundNumberError reports a round_number that is not a usable integer.
type InvalidRoundNumberError struct {
	Value string
}

func (e *InvalidRoundNumberError) Error() string {
	return fmt.Sprintf("'%s' is an invalid round_number. Please enter a valid number.", e.Value)
}

// InvalidSeasonError reports a season that is not a usable year.
type InvalidSeasonError struct {
	Value string
}

func (e *InvalidSeasonError) Error() string {
	return fmt.Sprintf("'%s' is an invalid season. Please enter a valid number.", e.Value)
}

// InvalidParameterError reports any other malformed parameter.
type InvalidParameterError struct {
	Name  string
	Value string
	Hint  string
}

func (e *InvalidParameterError) Error() string {
	msg := fmt.Sprintf("'%s' is an invalid %s.", e.Value, e.Name)
	if e.Hint != "" {
		msg += " " + e.Hint
	}
	return msg
}

// IsValidationError reports whether err comes from parameter validation.
func IsValidationError(err error) bool {
	var (
		src *InvalidSourceError
		cmp *InvalidCompetitionError
		rnd *InvalidRoundNumberError
		sea *InvalidSeasonError
		prm *InvalidParameterError
	)
	return errors.As(err, &src) || errors.As(err, &cmp) || errors.As(err, &rnd) ||
		errors.As(err, &sea) || errors.As(err, &prm)
}
