/*
Package workers sizes and runs the background pool used for automated
media-manager operations.

# Sizing

Count, ForCPU and ForIO derive a worker count from GOMAXPROCS, which follows
container CPU limits, rather than runtime.NumCPU, which reports host CPUs.
MEDIA_MANAGER_WORKERS overrides the computed value:

	size := workers.ForIO(4) // disk-bound scans and prunes, at most 4 workers

# Pool

Pool is a fixed set of goroutines reading from a bounded queue. Jobs are
submitted with the generic Submit helper, which returns a Future:

	pool := workers.NewPool(workers.ForIO(4), 16)
	defer pool.Close()

	f, err := workers.Submit(ctx, pool, func() (tasks.Result, error) {
	    return runner.Run("generate-media-list")
	})
	if err != nil {
	    return err // pool closed or ctx done while queueing
	}
	res, err := f.Wait(ctx)

A job whose context is done before a worker picks it up is resolved with the
context error and never runs. A running job is never interrupted: scans and
prunes run to completion. Close stops intake and waits for queued jobs.
*/
package workers
