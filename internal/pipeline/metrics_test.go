package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/metrics"
)

type countingRecorder struct {
	mu         sync.Mutex
	documents  map[string]int
	constructs map[string]int
	pruned     int
	runs       int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{documents: map[string]int{}, constructs: map[string]int{}}
}

func (c *countingRecorder) IncDocument(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[outcome]++
}

func (c *countingRecorder) AddConstructs(kind string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructs[kind] += n
}

func (c *countingRecorder) AddPrunedLines(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruned += n
}

func (c *countingRecorder) ObserveRun(time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
}

func TestRunRecordsMetrics(t *testing.T) {
	root, store, db := testEnv(t)
	writeFile(t, root, "a.md", "See [site](https://example.com) and ![pic](img/pic.png).\n")
	writeFile(t, root, "b.md", "Plain prose.\n")

	rec := newCountingRecorder()
	svc := newService(t, store, Config{Generator: convert.MkDocs, Workers: 2}, WithLedger(db), WithMetrics(rec))

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if rec.runs != 2 {
		t.Fatalf("runs = %d, want 2", rec.runs)
	}
	if rec.documents[metrics.OutcomeWritten] != 1 {
		t.Fatalf("written = %d, want 1", rec.documents[metrics.OutcomeWritten])
	}
	if rec.documents[metrics.OutcomeNoop] != 1 {
		t.Fatalf("noop = %d, want 1", rec.documents[metrics.OutcomeNoop])
	}
	if rec.documents[metrics.OutcomeUnchanged] != 2 {
		t.Fatalf("unchanged = %d, want 2", rec.documents[metrics.OutcomeUnchanged])
	}
	if rec.constructs["link"] != 1 || rec.constructs["image"] != 1 {
		t.Fatalf("constructs = %v", rec.constructs)
	}
}
