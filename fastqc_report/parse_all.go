package fastqc_report

import (
	"sync"

	"go.uber.org/multierr"
)

// ParseFiles parses independent archives with up to workers goroutines. Reports come back
// in the order of paths; every failure is returned, combined, and failed entries are left
// out of the result.
func ParseFiles(paths []string, workers int) ([]*Report, error) {
	workers = max(workers, 1)

	results := make([]*Report, len(paths))
	errs := make([]error, len(paths))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i], errs[i] = ParseFile(p)
		}(i, p)
	}
	wg.Wait()

	reports := make([]*Report, 0, len(paths))
	for _, r := range results {
		if r != nil {
			reports = append(reports, r)
		}
	}
	return reports, multierr.Combine(errs...)
}
