package sync

// Aggregation helpers for dashboard tiles, computed client-side over a store
// snapshot.

// Sum totals value over the records.
func Sum[T any](records []T, value func(T) float64) float64 {
	var total float64
	for _, rec := range records {
		total += value(rec)
	}
	return total
}

// Average returns the mean of value over the records, zero for an empty list.
func Average[T any](records []T, value func(T) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	return Sum(records, value) / float64(len(records))
}

// CountWhere counts records matching the predicate.
func CountWhere[T any](records []T, match func(T) bool) int {
	count := 0
	for _, rec := range records {
		if match(rec) {
			count++
		}
	}
	return count
}

// PercentSplit groups records by key and returns each group's share of the
// total as a percentage. An empty list yields an empty map.
func PercentSplit[T any](records []T, key func(T) string) map[string]float64 {
	if len(records) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int)
	for _, rec := range records {
		counts[key(rec)]++
	}
	out := make(map[string]float64, len(counts))
	for k, count := range counts {
		out[k] = float64(count) / float64(len(records)) * 100
	}
	return out
}
