package models

// Requests for the signal HTTP endpoints. Defined in domain for consistency and reuse.

type TrendRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
}

type LevelsRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
}

type SignalsRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
}

type StatsRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
}

type ExecuteSignalRequest struct {
	Pair  string `query:"pair" json:"pair" validate:"required"`
	Index int    `query:"index" json:"index" validate:"gte=0"`
}
