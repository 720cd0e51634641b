/*
Copyright © 2024 the lidarprof authors.
This file is part of lidarprof.

lidarprof is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lidarprof is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lidarprof.  If not, see <http://www.gnu.org/licenses/>.
*/

package lidarprof

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Job is one file to load and render.
type Job struct {
	Path   string
	Format Format
	// Output is the image file to write.
	Output  string
	Options RenderOptions
}

// Result is the outcome of a Job.
type Result struct {
	Job Job
	// Profiles and Levels give the shape of the rendered bundle.
	Profiles, Levels int
	Err              error
}

// Batch loads and renders many files concurrently.
type Batch struct {
	// Names are the variable names used when loading.
	Names NameSet

	// Workers is the maximum number of jobs run at once.
	// Values below 1 mean no limit.
	Workers int

	Log logrus.FieldLogger
}

// Run runs jobs and returns one Result per job in the same order. A
// failed job does not stop the others. Jobs that have not started when
// ctx is canceled fail with the context's error.
func (b *Batch) Run(ctx context.Context, jobs []Job) []Result {
	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	results := make([]Result, len(jobs))
	var g errgroup.Group
	if b.Workers > 0 {
		g.SetLimit(b.Workers)
	}
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = b.run(ctx, j, log)
			return nil
		})
	}
	g.Wait()
	return results
}

func (b *Batch) run(ctx context.Context, j Job, log logrus.FieldLogger) Result {
	r := Result{Job: j}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}
	entry := log.WithFields(logrus.Fields{"file": j.Path, "format": j.Format})
	bundle, err := b.Names.Load(j.Path, j.Format)
	if err != nil {
		entry.WithError(err).Error("loading failed")
		r.Err = err
		return r
	}
	r.Profiles, r.Levels = bundle.Shape()
	fig, err := Render(bundle, j.Options)
	if err == nil {
		err = fig.Save(j.Output)
	}
	if err != nil {
		entry.WithError(err).Error("rendering failed")
		r.Err = err
		return r
	}
	entry.WithFields(logrus.Fields{
		"shape":  fmt.Sprintf("%dx%d", r.Profiles, r.Levels),
		"output": j.Output,
	}).Info("plot written")
	return r
}

// RunBatch runs jobs on at most workers goroutines using the default
// variable names.
func RunBatch(ctx context.Context, jobs []Job, workers int, log logrus.FieldLogger) []Result {
	b := &Batch{Names: DefaultNames(), Workers: workers, Log: log}
	return b.Run(ctx, jobs)
}
