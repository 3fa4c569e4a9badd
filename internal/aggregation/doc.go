// Package aggregation regroups per-username tweet files into per-calendar-day
// files and verifies that the regrouping kept every row.
//
// AggregateByDate reads every {username}.csv, sorts it by date and appends
// each day's rows to {YYYY-MM-DD}.csv. Verify counts rows and cells on both
// sides; ShapeReport.Check turns a mismatch into an error.
package aggregation
