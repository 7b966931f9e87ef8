package analytics

// Summary is the reduction of one query window. It is recomputed on every
// refresh and never persisted.
type Summary struct {
	StdDev       float64 `json:"std_dev"`
	Max          float64 `json:"max"`
	Min          float64 `json:"min"`
	MorningAvg   float64 `json:"morning_avg"`
	NoonAvg      float64 `json:"noon_avg"`
	AfternoonAvg float64 `json:"afternoon_avg"`
	NightAvg     float64 `json:"night_avg"`
}
