package domain

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConditionKind = errors.New("invalid condition kind")
	ErrChampionNotFound     = errors.New("champion not found")
)
