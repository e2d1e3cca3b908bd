package extractor

// Record is one flattened metric data point. Key is a 1-based ordinal over
// the run's emission order; the window bounds the query was made with are
// stamped on every record.
type Record struct {
	Key           int     `json:"key"`
	Name          string  `json:"name"`
	RID           string  `json:"rid"`
	Type          string  `json:"type"`
	Start         string  `json:"start"`
	Finish        string  `json:"finish"`
	Validity      string  `json:"validity"`
	Value         float64 `json:"value"`
	Index         int     `json:"index"`
	ExecutionDate string  `json:"execution_date"`
	FromDate      string  `json:"from_date"`
	TillDate      string  `json:"till_date"`
	FromTime      string  `json:"from_time,omitempty"`
	TillTime      string  `json:"till_time,omitempty"`
}
