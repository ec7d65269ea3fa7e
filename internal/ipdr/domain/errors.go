package domain

import "errors"

var (
	ErrNoDataset        = errors.New("no dataset loaded")
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	ErrStaleAnalysis    = errors.New("analysis superseded by a dataset replacement")
	ErrNodeNotFound     = errors.New("node not found in current graph")
	ErrEntryNotFound    = errors.New("history entry not found")
	ErrHistoryDisabled  = errors.New("history store not configured")
	ErrEmptyDataset     = errors.New("dataset contains no sessions")
)
