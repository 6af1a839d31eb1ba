package pipeline

// Schema pins which passenger attributes become model features and in what
// order: numeric columns first, then the one-hot blocks of the categoricals.
type Schema struct {
	Numeric     []string
	Categorical []string
}

// DefaultSchema is the feature set used by the analysis.
func DefaultSchema() Schema {
	return Schema{
		Numeric:     []string{"Age", "TotalSpent", "GroupSize"},
		Categorical: []string{"HomePlanet", "CryoSleep", "Destination", "VIP", "SpendingFlag", "Deck", "Side"},
	}
}
