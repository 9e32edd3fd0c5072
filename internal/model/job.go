package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Job is the unified representation of a posting from any ATS backend.
type Job struct {
	Source      string     // backend name (lever, greenhouse, ...)
	Company     string     // company identifier (board slug, tenant, feed host)
	CompanyName string     // display name from config
	ExternalID  string     // backend's own posting id
	Title       string
	Location    string
	Country     string
	Department  string
	Description string // plain-text snippet, may be partial
	URL         string // direct apply link
	Remote      bool
	PostedAt    *time.Time // nullable (not all APIs provide this)
	FetchedAt   time.Time  // our clock, set by the pipeline
}

// SeenKey returns the stable cross-run identity of the posting: the hex
// sha256 of source, company and external id joined with NUL separators.
// The separator keeps ("a","bc") and ("ab","c") from colliding.
func (j Job) SeenKey() string {
	h := sha256.New()
	h.Write([]byte(j.Source))
	h.Write([]byte{0})
	h.Write([]byte(j.Company))
	h.Write([]byte{0})
	h.Write([]byte(j.ExternalID))
	return hex.EncodeToString(h.Sum(nil))
}

// Valid reports whether the record carries the fields every downstream
// stage depends on. Invalid records are dropped before filtering.
func (j Job) Valid() bool {
	return j.Title != "" && j.URL != "" && j.ExternalID != ""
}

// SeenStore tracks which posting keys have been seen in earlier runs.
type SeenStore interface {
	Contains(key string) (bool, error)
	Upsert(key string, firstSeen time.Time) error
	Prune(olderThan time.Duration) error
	IsEmpty() (bool, error)
}
