package domain

// IsCurrent reports whether a feature is valid on today. An empty bound is open on
// that side and EndDate is exclusive. ISO dates compare correctly as strings.
func IsCurrent(props FeatureProperties, today string) bool {
	if props.StartDate != "" && props.StartDate > today {
		return false
	}
	if props.EndDate != "" && props.EndDate <= today {
		return false
	}
	return true
}
