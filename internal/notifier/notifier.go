// Package notifier delivers a finished run: new postings to the log,
// and the rendered report by email when configured.
package notifier

import (
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Message is one rendered run ready for delivery.
type Message struct {
	Subject string
	Text    string      // plain-text digest
	HTML    []byte      // rendered report document
	Jobs    []model.Job // new postings this run
}

// Notifier delivers one run's report.
type Notifier interface {
	Notify(msg Message) error
}
