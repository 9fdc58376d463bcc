package models

import "time"

// CallRecord is one audited tool invocation.
type CallRecord struct {
	RequestID  string
	Tool       string
	Method     string
	Path       string
	StatusCode int
	IsError    bool
	LatencyMs  int64
	CreatedAt  time.Time
}

// CallSummary aggregates audited invocations per tool.
type CallSummary struct {
	Tool         string
	Calls        int64
	Errors       int64
	AvgLatencyMs float64
}
