package resultcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newsvani/newsvani/pkg/models"
)

func testReport(company string) *models.CompanyReport {
	return &models.CompanyReport{Company: company, GeneratedAt: time.Now()}
}

func TestGetOrComputeCaches(t *testing.T) {
	cache := New()

	calls := 0
	compute := func() (*models.CompanyReport, error) {
		calls++
		return testReport("acme"), nil
	}

	first, err := cache.GetOrCompute("acme", compute)
	if err != nil {
		t.Fatalf("first GetOrCompute: %v", err)
	}
	second, err := cache.GetOrCompute("acme", compute)
	if err != nil {
		t.Fatalf("second GetOrCompute: %v", err)
	}

	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if first != second {
		t.Error("second call returned a different report instance")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	cache := New()

	failing := func() (*models.CompanyReport, error) {
		return nil, errors.New("network down")
	}
	if _, err := cache.GetOrCompute("acme", failing); err == nil {
		t.Fatal("expected error from failing compute")
	}
	if cache.Len() != 0 {
		t.Errorf("failed computation was cached: Len = %d", cache.Len())
	}

	// A later call retries and succeeds.
	report, err := cache.GetOrCompute("acme", func() (*models.CompanyReport, error) {
		return testReport("acme"), nil
	})
	if err != nil {
		t.Fatalf("retry GetOrCompute: %v", err)
	}
	if report == nil || report.Company != "acme" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	cache := New()

	var calls int32
	release := make(chan struct{})
	compute := func() (*models.CompanyReport, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return testReport("acme"), nil
	}

	const workers = 8
	results := make([]*models.CompanyReport, workers)

	var started, done sync.WaitGroup
	started.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer done.Done()
			started.Done()
			report, err := cache.GetOrCompute("acme", compute)
			if err != nil {
				t.Errorf("GetOrCompute: %v", err)
				return
			}
			results[i] = report
		}()
	}

	started.Wait()
	// Give the goroutines a moment to join the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute ran %d times under concurrency, want 1", got)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("worker %d received a different report instance", i)
		}
	}
}

func TestGetMiss(t *testing.T) {
	cache := New()
	if _, ok := cache.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}
}

func TestFlush(t *testing.T) {
	cache := New()
	if _, err := cache.GetOrCompute("acme", func() (*models.CompanyReport, error) {
		return testReport("acme"), nil
	}); err != nil {
		t.Fatal(err)
	}

	cache.Flush()
	if cache.Len() != 0 {
		t.Errorf("Len after Flush = %d, want 0", cache.Len())
	}
	if _, ok := cache.Get("acme"); ok {
		t.Error("flushed entry still retrievable")
	}
}
