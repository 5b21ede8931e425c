// Package domain models the landscape simulation request lifecycle.
//
// # Request flow
//
// A caller submits a coordinate pair and a priority. The coordinator derives
// a SharedContext (one-time geographic and simulation analysis) and fans a
// SpecialistAssignment out to each expected specialist. Every specialist
// produces exactly one SpecialistReport. When the expected set is covered —
// or the global request timeout fires — the reports are aggregated into a
// FinalReport.
//
// # Priorities
//
//	"urgent"        — trimmed specialist set to bound latency
//	"comprehensive" — full specialist set (the default for unknown values)
//
// # Option labels
//
// FinalReport.OptionLabels is the case-insensitively deduplicated union of
// all reporting specialists' labels, truncated and padded to the configured
// bounds. It is never empty: a fixed default list backfills the union when
// aggregation yields too few.
package domain
