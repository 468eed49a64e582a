package model

// Overview is the company summary record, including the ICB classification
// used for peer resolution.
type Overview struct {
	Ticker           string  `json:"ticker"`
	Exchange         string  `json:"exchange"`
	Industry         string  `json:"industry"`
	IndustryID       int     `json:"industry_id"`
	IndustryIDv2     string  `json:"industry_id_v2"`
	CompanyType      string  `json:"company_type"`
	ShortName        string  `json:"short_name"`
	Website          string  `json:"website"`
	EstablishedYear  string  `json:"established_year"`
	NoShareholders   int     `json:"no_shareholders"`
	NoEmployees      int     `json:"no_employees"`
	ForeignPercent   float64 `json:"foreign_percent"`
	OutstandingShare float64 `json:"outstanding_share"`
	IssueShare       float64 `json:"issue_share"`
	StockRating      float64 `json:"stock_rating"`
	DeltaInWeek      float64 `json:"delta_in_week"`
	DeltaInMonth     float64 `json:"delta_in_month"`
	DeltaInYear      float64 `json:"delta_in_year"`
}

// Profile carries the long-form company description blocks.
type Profile struct {
	CompanyName        string `json:"company_name"`
	CompanyProfile     string `json:"company_profile"`
	HistoryDev         string `json:"history_dev"`
	CompanyPromise     string `json:"company_promise,omitempty"`
	BusinessRisk       string `json:"business_risk"`
	KeyDevelopments    string `json:"key_developments"`
	BusinessStrategies string `json:"business_strategies"`
}

// Shareholder is one entry of the major-shareholder roster.
type Shareholder struct {
	Name       string  `json:"share_holder"`
	OwnPercent float64 `json:"share_own_percent"`
}

// Officer is one company officer with ownership stake.
type Officer struct {
	Name       string  `json:"officer_name"`
	Position   string  `json:"officer_position,omitempty"`
	OwnPercent float64 `json:"officer_own_percent"`
}

// Subsidiary is one subsidiary holding.
type Subsidiary struct {
	Name       string  `json:"sub_company_name"`
	OwnPercent float64 `json:"sub_own_percent"`
}

// Dividend is one dividend payout event.
type Dividend struct {
	ExerciseDate        string  `json:"exercise_date"`
	CashYear            int     `json:"cash_year"`
	CashDividendPercent float64 `json:"cash_dividend_percentage"`
	IssueMethod         string  `json:"issue_method"`
}

// InsiderDeal is one reported insider transaction.
type InsiderDeal struct {
	AnnounceDate string   `json:"deal_announce_date"`
	Method       string   `json:"deal_method,omitempty"`
	Action       string   `json:"deal_action"`
	Quantity     float64  `json:"deal_quantity"`
	Price        *float64 `json:"deal_price"`
	Ratio        *float64 `json:"deal_ratio"`
}

// Event is one corporate event (AGM, rights issue, dividend record date...).
type Event struct {
	Name          string `json:"event_name"`
	Code          string `json:"event_code"`
	Description   string `json:"event_desc"`
	NotifyDate    string `json:"notify_date"`
	ExerciseDate  string `json:"exer_date"`
	RegFinalDate  string `json:"reg_final_date"`
	ExerRightDate string `json:"exer_right_date"`
}

// News is one news item attached to a ticker.
type News struct {
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	PublishDate string   `json:"publish_date"`
	Price       *float64 `json:"price"`
	PriceChange *float64 `json:"price_change"`
}

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
