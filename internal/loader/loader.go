// Package loader fills a pose store from a pose source.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vrm-pose-player/internal/pose"
	"vrm-pose-player/internal/posesource"
)

// Options configures one load.
type Options struct {
	Manifest posesource.Manifest
	Fetcher  posesource.Fetcher

	// Concurrency bounds parallel fetches. 0 or 1 fetches one file at a time.
	Concurrency int

	// Store receives the files. A new store is created when nil.
	Store *pose.Store

	Logger zerolog.Logger
}

// Result summarizes a load.
type Result struct {
	Found  int
	Loaded int
	Failed []string
}

type fetched struct {
	file pose.PoseFile
	err  error
}

// Load lists, sorts, fetches and decodes every pose file, appending them to the
// store in ascending numeric-token order. A failing file is logged and skipped;
// a failing listing aborts the load and leaves the store untouched.
func Load(ctx context.Context, opts Options) (*pose.Store, Result, error) {
	store := opts.Store
	if store == nil {
		store = pose.NewStore()
	}
	log := opts.Logger

	names, err := opts.Manifest.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Pose listing failed")
		return store, Result{}, fmt.Errorf("loader: list: %w", err)
	}
	posesource.SortByNumber(names)

	res := Result{Found: len(names)}
	log.Info().Int("files", len(names)).Msg("Pose files found")

	add := func(name string, f fetched) {
		if f.err != nil {
			res.Failed = append(res.Failed, name)
			log.Error().Err(f.err).Str("file", name).Msg("Pose file load failed")
			return
		}
		store.Append(f.file)
		res.Loaded++
		log.Info().Str("file", name).Int("frames", len(f.file.Frames)).Msg("Pose file loaded")
	}

	if opts.Concurrency <= 1 {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return store, res, err
			}
			add(name, fetchOne(ctx, opts.Fetcher, name))
		}
		return store, res, nil
	}

	// Fetch in parallel. Each finished fetch flushes the ready prefix, so files
	// reach the store in sorted order as soon as everything before them is in.
	var (
		mu    sync.Mutex
		next  int
		slots = make([]fetched, len(names))
		ready = make([]bool, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			f := fetchOne(gctx, opts.Fetcher, name)

			mu.Lock()
			defer mu.Unlock()
			slots[i], ready[i] = f, true
			for next < len(names) && ready[next] && ctx.Err() == nil {
				add(names[next], slots[next])
				slots[next] = fetched{}
				next++
			}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return store, res, err
	}
	return store, res, nil
}

func fetchOne(ctx context.Context, f posesource.Fetcher, name string) fetched {
	body, err := f.Fetch(ctx, name)
	if err != nil {
		return fetched{err: err}
	}
	defer body.Close()

	file, err := pose.Decode(name, body)
	if err != nil {
		return fetched{err: err}
	}
	return fetched{file: file}
}
