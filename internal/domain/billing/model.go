package billing

import "time"

// HikeWindow is the number of trailing records a hike comparison looks at:
// five baseline months plus the current one.
const HikeWindow = 6

// FallbackAdvisory replaces the advisory whenever the explanation call fails.
const FallbackAdvisory = "Could not analyze the hike. Please try again."

// Record is one month's aggregated charge for a user.
type Record struct {
	Month       string  `json:"month"`
	TotalAmount float64 `json:"total_amount"`
	UserID      string  `json:"user_id"`
}

// Hike describes a latest bill that exceeds the mean of the prior five.
type Hike struct {
	Baseline     []float64 `json:"baseline"`
	Average      float64   `json:"average"`
	Current      float64   `json:"current"`
	CurrentMonth string    `json:"current_month"`
}

// Dashboard is the payload one view activation renders.
type Dashboard struct {
	Records     []Record  `json:"records"`
	Advisory    string    `json:"advisory,omitempty"`
	Hike        *Hike     `json:"hike,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Config wires runtime knobs for the billing domain.
type Config struct {
	RequireConsecutiveMonths bool
}
