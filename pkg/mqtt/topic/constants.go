package topic

// Standard MQTT topic syntax.
const (
	// Separator splits topic levels.
	Separator = "/"

	// Wildcard is the single-level wildcard "+".
	// Example: "PTIN2023/+/ANOMALIA" matches "PTIN2023/CAR/ANOMALIA".
	Wildcard = "+"

	// MultiWildcard is the multi-level wildcard "#".
	// It must be the last character in the topic filter.
	// Example: "PTIN2023/#" matches "PTIN2023/CAR/UPDATESTATUS".
	MultiWildcard = "#"
)
