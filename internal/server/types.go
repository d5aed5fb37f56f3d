package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// QuoteResponse is the normalized quote plus its fee breakdown
type QuoteResponse struct {
	Venue        string  `json:"venue"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	AmountIn     string  `json:"amount_in"`
	AmountOut    string  `json:"amount_out"`
	MinAmountOut string  `json:"min_amount_out"`
	OutPrice     string  `json:"out_price"`
	PriceImpact  float64 `json:"price_impact"`
	Slippage     float64 `json:"slippage"`

	Fees FeesResponse `json:"fees"`

	RefreshSeconds int `json:"refresh_seconds"`
}

// FeesResponse is the fee decomposition of a quote
type FeesResponse struct {
	Protocol   string `json:"protocol"`
	Network    string `json:"network"`
	Aggregator string `json:"aggregator"`
	Total      string `json:"total"`
}

// PoolResponse describes one registered pool or market
type PoolResponse struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Protocol string `json:"protocol"`
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
}

// PriceResponse represents a cached pair price
type PriceResponse struct {
	Pair  string  `json:"pair"`
	Price float64 `json:"price"`
}
