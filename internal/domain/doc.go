// Package domain models point-incident data on its way to a heatmap artifact.
//
// # Data Source
//
// Input is a single CSV export of point events. Exports come from several
// upstream systems with no shared schema, so column names are resolved by
// probing a prioritized alias list rather than by position:
//
//	latitude:  lat, latitude, Latitude, LAT, y
//	longitude: lon, lng, longitude, Longitude, LON, x
//	date:      date, incident_date, Date, DATE, year
//
// The first alias present in the header wins, even if a later alias also
// appears. Matching is case-sensitive; resolution failure is fatal and the
// error names every alias tried. See [ResolveColumns].
//
// # Temporal Conventions
//
// Some exports carry only a year. When the resolved date column is literally
// named "year", values are treated as bare years and anchored at July 1 so a
// year-only record sits at the midpoint of its year instead of biasing toward
// January. Full date columns go through a tolerant multi-layout parser
// (ISO 8601, US slash dates, long-form month names) with the same July 1
// anchor as a last resort for bare-year values mixed into a date column.
// Rows whose date cannot be parsed are excluded, not errors. See [NormalizeDate].
//
// # Year Windows
//
// Records are grouped into contiguous, non-overlapping spans of calendar
// years covering [minYear, maxYear] of the valid records. Every window spans
// the configured number of years except the last, which covers whatever
// remains:
//
//	1995..2002 in 3-year windows → [1995-1997] [1998-2000] [2001-2002]
//
// A single observed year produces a single one-year window. See [BuildWindows].
//
// # Validity
//
// A row is valid when its date parses and its coordinates are numeric with
// lat in [-90, 90] and lon in [-180, 180]. Invalid rows are silently dropped;
// only the aggregate excluded count is reported. The year range (and therefore
// the window set) is derived from all valid records before any optional
// geographic filter is applied, so filtering never shifts window boundaries.
package domain
