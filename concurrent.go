package cinit

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Buffer is one named, already-preprocessed text buffer. Reading files and
// running the external preprocessor belong to the caller.
type Buffer struct {
	Name string
	Text string
}

// ConcurrentExtractor scans multiple buffers in parallel
type ConcurrentExtractor struct {
	workers int
}

// NewConcurrentExtractor creates a new concurrent extractor
func NewConcurrentExtractor(workers int) *ConcurrentExtractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ConcurrentExtractor{workers: workers}
}

// ExtractResult represents the result of scanning one buffer
type ExtractResult struct {
	Index   int
	Name    string
	Entries IndexedEntryMap
	Error   error
}

type extractJob struct {
	index int
	buf   Buffer
}

// ExtractBuffers scans all buffers concurrently for indexed entries
// matching keyPattern, returning one result per buffer in input order.
func (ce *ConcurrentExtractor) ExtractBuffers(ctx context.Context, keyPattern string, buffers []Buffer) ([]ExtractResult, error) {
	if len(buffers) == 0 {
		return nil, nil
	}

	jobChan := make(chan extractJob, len(buffers))
	resultChan := make(chan ExtractResult, len(buffers))

	var wg sync.WaitGroup
	for i := 0; i < ce.workers && i < len(buffers); i++ {
		wg.Add(1)
		go ce.worker(ctx, &wg, jobChan, resultChan, keyPattern)
	}

	for i, buf := range buffers {
		select {
		case jobChan <- extractJob{index: i, buf: buf}:
		case <-ctx.Done():
			close(jobChan)
			return nil, ctx.Err()
		}
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]ExtractResult, len(buffers))
	for result := range resultChan {
		results[result.Index] = result
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// worker scans buffers from the job channel
func (ce *ConcurrentExtractor) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan extractJob, results chan<- ExtractResult, keyPattern string) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			entries, err := ScanIndexedEntries(job.buf.Text, keyPattern)
			if err != nil {
				err = fmt.Errorf("failed to scan buffer %s: %w", job.buf.Name, err)
			}
			results <- ExtractResult{Index: job.index, Name: job.buf.Name, Entries: entries, Error: err}
		}
	}
}

// ExtractAndMerge scans buffers concurrently and overlays their entry maps
// in buffer order, so a key appearing in a later buffer wins.
func (ce *ConcurrentExtractor) ExtractAndMerge(ctx context.Context, keyPattern string, buffers []Buffer) (IndexedEntryMap, error) {
	results, err := ce.ExtractBuffers(ctx, keyPattern, buffers)
	if err != nil {
		return nil, err
	}

	var errors MultiError
	for _, result := range results {
		if result.Error != nil {
			errors.Add(result.Error)
		}
	}
	if errors.HasErrors() {
		return nil, &errors
	}

	merged := make(IndexedEntryMap)
	for _, result := range results {
		for key, fields := range result.Entries {
			merged[key] = fields
		}
	}

	return merged, nil
}

// BatchEvaluator evaluates multiple expressions concurrently
type BatchEvaluator struct {
	workers int
}

// NewBatchEvaluator creates a new batch evaluator
func NewBatchEvaluator(workers int) *BatchEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchEvaluator{workers: workers}
}

// EvalResult represents the result of evaluating an expression
type EvalResult struct {
	Index int
	Value int64
	Error error
}

// EvaluateExpressions evaluates all expressions against env concurrently,
// returning values in input order.
func (be *BatchEvaluator) EvaluateExpressions(ctx context.Context, expressions []string, env *Environment) ([]int64, error) {
	if len(expressions) == 0 {
		return nil, nil
	}
	if env == nil {
		env = DefaultEnv()
	}

	workChan := make(chan struct {
		index int
		expr  string
	}, len(expressions))
	resultChan := make(chan EvalResult, len(expressions))

	var wg sync.WaitGroup
	for i := 0; i < be.workers && i < len(expressions); i++ {
		wg.Add(1)
		go be.evalWorker(ctx, &wg, workChan, resultChan, env)
	}

	for i, expr := range expressions {
		select {
		case workChan <- struct {
			index int
			expr  string
		}{i, expr}:
		case <-ctx.Done():
			close(workChan)
			return nil, ctx.Err()
		}
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]int64, len(expressions))
	var errors MultiError

	for result := range resultChan {
		if result.Error != nil {
			errors.Add(fmt.Errorf("expression %d: %w", result.Index, result.Error))
		} else {
			results[result.Index] = result.Value
		}
	}

	if errors.HasErrors() {
		return nil, &errors
	}

	return results, nil
}

// evalWorker processes expressions
func (be *BatchEvaluator) evalWorker(ctx context.Context, wg *sync.WaitGroup, work <-chan struct {
	index int
	expr  string
}, results chan<- EvalResult, env *Environment) {
	defer wg.Done()

	for w := range work {
		select {
		case <-ctx.Done():
			return
		default:
			value, err := EvaluateWith(w.expr, env)
			results <- EvalResult{
				Index: w.index,
				Value: value,
				Error: err,
			}
		}
	}
}
