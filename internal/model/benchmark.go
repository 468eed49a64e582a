package model

// PeerGroup is a classification code and the tickers sharing it. The subject
// ticker is a member of its own group; benchmark statistics are computed over
// the whole group, subject included.
type PeerGroup struct {
	Code    string   `json:"industry_code"`
	Name    string   `json:"industry_name"`
	Subject string   `json:"subject"`
	Members []string `json:"members"`
}

// RatioSample is one peer's contribution to one ratio, tagged with
// provenance. Failed fetches carry Err and are excluded from aggregation.
type RatioSample struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
	OK     bool    `json:"ok"`
	Err    string  `json:"err,omitempty"`
}

// Benchmark summarizes one ratio across the successful peer samples.
type Benchmark struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	Std    float64 `json:"std"`
	Count  int     `json:"count"`
}

// BenchmarkReport is the full benchmark result for one peer group. Ratios
// whose successful sample count fell below the configured minimum are absent
// from Benchmarks, not present with degenerate statistics.
type BenchmarkReport struct {
	IndustryName      string               `json:"industry_name"`
	IndustryCode      string               `json:"industry_code"`
	CompanyCount      int                  `json:"company_count"`
	CompaniesAnalyzed int                  `json:"companies_analyzed"`
	Benchmarks        map[string]Benchmark `json:"benchmarks"`
	RatiosAvailable   []string             `json:"ratios_available"`
}
