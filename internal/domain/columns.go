package domain

// Column aliases in priority order. Matching is case-sensitive because the
// upstream exports disagree on casing and the variants below are the ones
// actually observed; alias priority outranks header position.
var (
	LatAliases  = []string{"lat", "latitude", "Latitude", "LAT", "y"}
	LonAliases  = []string{"lon", "lng", "longitude", "Longitude", "LON", "x"}
	DateAliases = []string{"date", "incident_date", "Date", "DATE", "year"}
)

// Columns holds the resolved header indices for one input table.
type Columns struct {
	Lat  int
	Lon  int
	Date int

	// YearOnly is set when the resolved date column is literally named
	// "year"; its values are then bare years anchored at July 1.
	YearOnly bool
}

// ResolveColumns probes the header for each logical column and returns the
// resolved indices. A missing column yields a MissingColumnError naming every
// alias tried.
func ResolveColumns(header []string) (Columns, error) {
	lat, err := findColumn(header, "latitude", LatAliases)
	if err != nil {
		return Columns{}, err
	}
	lon, err := findColumn(header, "longitude", LonAliases)
	if err != nil {
		return Columns{}, err
	}
	date, err := findColumn(header, "date", DateAliases)
	if err != nil {
		return Columns{}, err
	}
	return Columns{
		Lat:      lat,
		Lon:      lon,
		Date:     date,
		YearOnly: header[date] == "year",
	}, nil
}

// findColumn returns the header index of the first alias present. Aliases are
// tried in order, so "lat" beats "Latitude" even when both columns exist.
func findColumn(header []string, field string, aliases []string) (int, error) {
	for _, alias := range aliases {
		for i, col := range header {
			if col == alias {
				return i, nil
			}
		}
	}
	return 0, &MissingColumnError{Field: field, Tried: aliases}
}
