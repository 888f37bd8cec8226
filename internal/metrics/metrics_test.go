package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/me/roadmap/pkg/model"
)

func TestNopImplementsCollector(t *testing.T) {
	var c Collector = Nop{}
	c.RoundCompleted(1.5)
	c.CandidateReturned(true)
	c.WorkerFailed()
	c.BestScore(model.Score{})
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.RoundCompleted(0.25)
	p.CandidateReturned(true)
	p.CandidateReturned(false)
	p.WorkerFailed()
	p.BestScore(model.Score{DeadlinesMet: 2, TotalLateness: 4, MakespanDays: 37})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for name := range names {
		if !strings.HasPrefix(name, "roadmap_") {
			t.Errorf("metric %q outside the roadmap namespace", name)
		}
	}

	if got := testutil.ToFloat64(p.failures); got != 1 {
		t.Errorf("worker failures = %v", got)
	}
	if got := testutil.ToFloat64(p.deadlinesMet); got != 2 {
		t.Errorf("deadlines met gauge = %v", got)
	}
}
