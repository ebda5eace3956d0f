// Package websearch decides when a chat turn needs live information and fetches
// it from Tavily or Brave behind a single failover gateway.
package websearch

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

var recencyKeywords = []string{
	"current",
	"latest",
	"recent",
	"today",
	"now",
	"weather",
	"news",
	"trend",
	"update",
	"this week",
	"this month",
	"this year",
}

// Classifier flags queries that plausibly ask about time-sensitive facts.
// Matching is plain substring containment on the lower-cased query, so "now"
// also matches inside "know".
type Classifier struct {
	mu       sync.RWMutex
	keywords []string
	year     int
}

// NewClassifier builds the keyword set for the given clock. The current and
// previous calendar years are included as keywords.
func NewClassifier(now time.Time) *Classifier {
	c := &Classifier{}
	c.Refresh(now)
	return c
}

// Refresh rebuilds the year keywords for now. It reports whether they changed.
func (c *Classifier) Refresh(now time.Time) bool {
	year := now.Year()

	c.mu.Lock()
	defer c.mu.Unlock()
	if year == c.year {
		return false
	}

	keywords := make([]string, 0, len(recencyKeywords)+2)
	keywords = append(keywords, recencyKeywords...)
	keywords = append(keywords, strconv.Itoa(year-1), strconv.Itoa(year))
	c.keywords = keywords
	c.year = year
	return true
}

// NeedsSearch reports whether query contains any recency keyword.
func (c *Classifier) NeedsSearch(query string) bool {
	q := strings.ToLower(query)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, kw := range c.keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the active keyword set.
func (c *Classifier) Keywords() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}
