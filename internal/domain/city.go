package domain

// RawRecord is one unvalidated entry from the upstream pollution API.
// Field types are deliberately loose: the upstream mixes strings and
// numbers freely, and entire fields may be missing or null.
type RawRecord struct {
	Name      any `json:"name"`
	Country   any `json:"country"`
	Pollution any `json:"pollution"`
}

// City is a record that passed classification, in canonical field form:
// trimmed name and country, pollution parsed to a float in [0,1000].
// Values are never mutated after construction.
type City struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Pollution float64 `json:"pollution"`
}

// EnrichedCity is a City extended with a short descriptive text.
type EnrichedCity struct {
	City
	Description string `json:"description"`
}

// PageResult is one page of enriched cities, sorted by pollution descending.
type PageResult struct {
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Total  int            `json:"total"`
	Cities []EnrichedCity `json:"cities"`
}
