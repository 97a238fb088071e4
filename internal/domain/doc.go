// Package domain turns avalanche bulletin statistics into map styling.
//
// # Data Source
//
// The dataset is region_summary.json: one record per micro-region with how often
// each danger level was issued and each avalanche problem reported over a season.
// Region codes follow the EAWS scheme, e.g. "AT-07-14" (Tyrol) or "IT-32-BZ-01"
// (South Tyrol). Missing count objects are read as zero.
//
// # Filters
//
// The map shows one statistic at a time:
//
//	Gefahrenstufe    value "1".."5"  reads rating_counts[value]
//	Lawinenprobleme  German label    reads avalanche_problem_counts[key]
//
// with the label mapping
//
//	Triebschnee → wind_drifted_snow     Altschnee   → persistent_weak_layers
//	Neuschnee   → new_snow              Gleitschnee → gliding_snow
//	Nassschnee  → wet_snow
//
// The value "alle" switches to the aggregate view: micro-regions are summed into
// eight super-regions (see [Classify]) and drawn as pie charts at fixed anchors.
//
// # Intensity and Color
//
// A count is normalized by the dataset-wide maximum of its key ([ComputeMaxima]).
// When the maximum is not positive, any positive count has intensity 1. Zero counts
// are never colored; the region renders transparent.
//
// # Feature Validity
//
// Tile polygons carry optional start_date and end_date. A polygon is current when
// start_date <= today < end_date, with absent bounds open.
package domain
