package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// YearRefresher is the classifier surface the refresh task drives.
type YearRefresher interface {
	Refresh(now time.Time) bool
	Keywords() []string
}

// ClassifierRefreshTask keeps the search classifier's year keywords in step
// with the clock on a long-running server.
type ClassifierRefreshTask struct {
	classifier YearRefresher
	now        func() time.Time
}

func NewClassifierRefreshTask(classifier YearRefresher, now func() time.Time) *ClassifierRefreshTask {
	if now == nil {
		now = time.Now
	}
	return &ClassifierRefreshTask{classifier: classifier, now: now}
}

func (t *ClassifierRefreshTask) Run(ctx context.Context) error {
	now := t.now()
	if t.classifier.Refresh(now) {
		log.WithFields(log.Fields{
			"year":     now.Year(),
			"keywords": t.classifier.Keywords(),
		}).Info("search classifier year keywords refreshed")
	}
	return nil
}
