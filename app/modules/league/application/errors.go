package leagueservice

import "errors"

var (
	// ErrSeasonExists indicates a week already exists for the requested start
	// date. Expected under concurrent triggers; callers treat it as a benign
	// refusal, not a process fault.
	ErrSeasonExists = errors.New("season already exists for start date")

	// ErrWeekNotFound indicates no current week exists where one is required.
	ErrWeekNotFound = errors.New("no current week")

	// ErrDataIntegrity indicates an upstream invariant violation, e.g. the
	// same participant appearing twice in one distribution batch. The
	// operation aborts and rolls back.
	ErrDataIntegrity = errors.New("data integrity violation")
)
