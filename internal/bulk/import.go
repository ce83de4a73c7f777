package bulk

import (
	"errors"
	"strings"

	"github.com/Dipak-sahani/brainlocker/internal/logger"
	"github.com/Dipak-sahani/brainlocker/internal/store"
)

// ErrNoValidItems is returned when a batch has nothing to import.
var ErrNoValidItems = errors.New("no valid questions to import")

// Inserter is the single store call an import needs. *store.Store satisfies it.
type Inserter interface {
	AddQuestion(p store.AddQuestionParams) (int64, error)
}

// Result reports how a batch went. Skipped counts invalid items that were
// never sent to the store.
type Result struct {
	Success int `json:"success" yaml:"success"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Import inserts the valid items one at a time under topic. A failed insert
// is logged and counted and the batch moves on, so a partial import is
// possible; no per-item error detail is kept.
func Import(dst Inserter, topic string, items []Item, log *logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	topic = strings.TrimSpace(topic)

	valid := ValidItems(items)
	res := Result{Skipped: len(items) - len(valid)}
	if len(valid) == 0 {
		return res, ErrNoValidItems
	}

	for i, it := range valid {
		_, err := dst.AddQuestion(store.AddQuestionParams{
			TopicName: topic,
			Question:  it.Question,
			Answer:    it.Answer,
		})
		if err != nil {
			log.Error("bulk import: insert failed", "topic", topic, "index", i, "error", err)
			res.Failed++
			continue
		}
		res.Success++
	}

	log.Info("bulk import finished",
		"topic", topic,
		"success", res.Success,
		"failed", res.Failed,
		"skipped", res.Skipped,
	)
	return res, nil
}
