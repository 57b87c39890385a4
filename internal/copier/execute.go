package copier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ExecuteOptions controls Execute.
type ExecuteOptions struct {
	Workers  int                    // parallel copies; <= 1 copies in plan order
	Progress func(done, total int) // called after each file, from the calling goroutine
}

// Result summarizes an executed plan.
type Result struct {
	Planned int
	Copied  int
	Failed  []FileError // in plan order
}

// OK reports whether every planned file was copied.
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Err returns nil on success, or a *PartialFailureError listing the failed files.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &PartialFailureError{Failed: r.Failed, Total: r.Planned}
}

// Execute copies every op, creating destination directories as needed and overwriting existing
// files. A failed file does not stop the remaining copies. Ops sharing a destination are copied
// by one worker in plan order, so the last of them wins whatever the worker count.
func Execute(ops []Op, opts ExecuteOptions) Result {
	res := Result{Planned: len(ops)}
	if len(ops) == 0 {
		return res
	}

	groups := groupByDestination(ops)

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(groups) {
		numWorkers = len(groups)
	}

	type result struct {
		index int
		err   error
	}

	taskChan := make(chan []int, len(groups))
	resultChan := make(chan result, len(ops))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range taskChan {
				for _, i := range group {
					resultChan <- result{index: i, err: copyOp(ops[i])}
				}
			}
		}()
	}

	for _, group := range groups {
		taskChan <- group
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	failed := make(map[int]error)
	completed := 0
	for r := range resultChan {
		completed++
		if r.err != nil {
			failed[r.index] = r.err
		} else {
			res.Copied++
		}
		if opts.Progress != nil {
			opts.Progress(completed, len(ops))
		}
	}

	indices := make([]int, 0, len(failed))
	for i := range failed {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		res.Failed = append(res.Failed, FileError{
			Source:      ops[i].Source,
			Destination: ops[i].Destination,
			Err:         failed[i],
		})
	}
	return res
}

// groupByDestination returns op indices grouped by cleaned destination path. Groups are ordered
// by their first op and hold indices in plan order.
func groupByDestination(ops []Op) [][]int {
	byDest := make(map[string]int, len(ops))
	var groups [][]int
	for i, op := range ops {
		dst := filepath.Clean(op.Destination)
		g, ok := byDest[dst]
		if !ok {
			g = len(groups)
			byDest[dst] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func copyOp(op Op) error {
	if err := os.MkdirAll(filepath.Dir(op.Destination), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return copyFile(op.Source, op.Destination)
}

// copyFile copies src to dst, overwriting dst, and carries over permission bits and the
// modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set times: %w", err)
	}
	return nil
}
