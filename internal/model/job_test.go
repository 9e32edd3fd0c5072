package model

import (
	"strings"
	"testing"
	"time"
)

func TestJob_SeenKey_Stable(t *testing.T) {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := Job{Source: "lever", Company: "acme", ExternalID: "123", Title: "QA Engineer", URL: "https://x"}
	b := Job{Source: "lever", Company: "acme", ExternalID: "123", Title: "QA Engineer (Senior)", Location: "Berlin", PostedAt: &posted}

	if a.SeenKey() != b.SeenKey() {
		t.Errorf("SeenKey changed with non-identity fields: %s vs %s", a.SeenKey(), b.SeenKey())
	}
	if len(a.SeenKey()) != 64 {
		t.Errorf("SeenKey length = %d, want 64 hex chars", len(a.SeenKey()))
	}
	if a.SeenKey() != strings.ToLower(a.SeenKey()) {
		t.Errorf("SeenKey not lowercase hex: %s", a.SeenKey())
	}
}

func TestJob_SeenKey_Distinct(t *testing.T) {
	base := Job{Source: "lever", Company: "acme", ExternalID: "123"}
	tests := []struct {
		name string
		job  Job
	}{
		{"different source", Job{Source: "greenhouse", Company: "acme", ExternalID: "123"}},
		{"different company", Job{Source: "lever", Company: "globex", ExternalID: "123"}},
		{"different id", Job{Source: "lever", Company: "acme", ExternalID: "124"}},
		{"field boundary shift", Job{Source: "lever", Company: "acme1", ExternalID: "23"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.job.SeenKey() == base.SeenKey() {
				t.Errorf("SeenKey collision between %+v and %+v", tt.job, base)
			}
		})
	}
}

func TestJob_Valid(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"complete", Job{ExternalID: "1", Title: "QA Lead", URL: "https://jobs.example/1"}, true},
		{"missing title", Job{ExternalID: "1", URL: "https://jobs.example/1"}, false},
		{"missing url", Job{ExternalID: "1", Title: "QA Lead"}, false},
		{"missing external id", Job{Title: "QA Lead", URL: "https://jobs.example/1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
