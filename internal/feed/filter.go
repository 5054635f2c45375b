package feed

import "time"

// Filter returns the items that are new relative to lastRun, in batch order.
// A zero lastRun means the source has never completed a run.
//
// Dated items are compared against lastRun (strictly after wins) and never
// touch seen. Undated items are always included on first sight and their
// links recorded in seen, so a later pass drops them while they remain in
// the cache window. Items without a link cannot be remembered and are passed
// through whenever their date does not exclude them.
func Filter(items []Item, lastRun time.Time, seen *RecencyCache) []Item {
	fresh := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Link != "" && seen.Contains(item.Link) {
			metricRecencyHits.Inc()
			continue
		}
		if isFresh(item, lastRun, seen) {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

func isFresh(item Item, lastRun time.Time, seen *RecencyCache) bool {
	published, ok := ParseDate(item.PubDate)
	if !ok {
		if item.Link != "" {
			seen.Record(item.Link)
		}
		return true
	}
	if lastRun.IsZero() {
		return true
	}
	return published.UTC().After(lastRun.UTC())
}
