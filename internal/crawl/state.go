package crawl

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// crawlState holds the shared bookkeeping of one run. Detail slots are
// reserved before the fetch is spawned and only counted as saved once the
// record is persisted, so the target cap holds even with concurrent workers.
type crawlState struct {
	mu sync.Mutex

	saved  int
	pages  int
	listed int

	seenKeys     mapset.Set[string]
	seenListings mapset.Set[string]
	pending      mapset.Set[string]
}

func newCrawlState() *crawlState {
	return &crawlState{
		seenKeys:     mapset.NewThreadUnsafeSet[string](),
		seenListings: mapset.NewThreadUnsafeSet[string](),
		pending:      mapset.NewThreadUnsafeSet[string](),
	}
}

// markListing records a listing URL, reporting false when it was already
// visited this run. Guards against pagination cycles.
func (s *crawlState) markListing(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenListings.Contains(url) {
		return false
	}
	s.seenListings.Add(url)
	return true
}

// tryIncPage claims a page slot against the page ceiling. The claim happens
// before the fetch so concurrent listing workers cannot overshoot maxPages.
func (s *crawlState) tryIncPage(maxPages int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages >= maxPages {
		return false
	}
	s.pages++
	return true
}

func (s *crawlState) addListed(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed += n
	return s.listed
}

// reserveDetail claims a work slot for the key. It fails when the key was
// already claimed this run or when all remaining slots are spoken for.
func (s *crawlState) reserveDetail(key string, target int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenKeys.Contains(key) {
		return false
	}
	if s.saved+s.pending.Cardinality() >= target {
		return false
	}
	s.seenKeys.Add(key)
	s.pending.Add(key)
	return true
}

// finishDetail converts a pending slot into a saved count. Returns false
// when the slot arrived after the target was already met, in which case the
// record must be dropped rather than persisted.
func (s *crawlState) finishDetail(key string, target int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Remove(key)
	if s.saved >= target {
		return false
	}
	s.saved++
	return true
}

// markFailed releases the pending slot but keeps the key marked, so the
// same broken posting is not retried from a later listing page.
func (s *crawlState) markFailed(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Remove(key)
}

func (s *crawlState) remainingCapacity(target int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return target - s.saved - s.pending.Cardinality()
}

func (s *crawlState) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

func (s *crawlState) pagesFetched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}
