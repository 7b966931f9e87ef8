package analytics

// Bucket is one of four fixed time-of-day classes. Boundaries are
// half-open on the hour except afternoon, which runs through 23:59:59.
type Bucket int

const (
	BucketNight     Bucket = iota // [00:00, 06:00)
	BucketMorning                 // [06:00, 12:00)
	BucketNoon                    // [12:00, 18:00)
	BucketAfternoon               // [18:00, 24:00)
)

// String returns the bucket name.
func (b Bucket) String() string {
	switch b {
	case BucketNight:
		return "night"
	case BucketMorning:
		return "morning"
	case BucketNoon:
		return "noon"
	case BucketAfternoon:
		return "afternoon"
	default:
		return "unknown"
	}
}

// BucketForHour maps an hour of day (0-23) to its bucket. The mapping is
// total: every hour lands in exactly one bucket.
func BucketForHour(hour int) Bucket {
	switch {
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 18:
		return BucketNoon
	case hour >= 18 && hour <= 23:
		return BucketAfternoon
	default:
		return BucketNight
	}
}
