// Package driver orchestrates one compilation: it builds the engine context
// from the project manifest, runs instantiation requests against the registry,
// and persists the resulting instantiation snapshot to the disk cache.
package driver

import (
	"fmt"
	"strconv"

	"quartz/internal/diag"
	"quartz/internal/project"
	"quartz/internal/source"
	"quartz/internal/templates"
)

// Request asks for one template instantiation driven to a phase. Overload
// requests walk the candidate set instead of the template map.
type Request struct {
	Name     string
	Args     []templates.GenericArgument
	Phase    templates.Phase
	Overload bool
	Span     source.Span
}

// Result is the outcome of a driver run.
type Result struct {
	Instances []*templates.Instance
	Bag       *diag.Bag
}

// Driver owns the compilation context for one project.
type Driver struct {
	Ctx      *templates.CompilationContext
	manifest *project.Manifest
	cache    *SnapshotCache
}

// New builds a driver configured from the manifest. A nil manifest gets
// engine defaults and no disk cache.
func New(manifest *project.Manifest) (*Driver, error) {
	opts := templates.Options{}
	var cache *SnapshotCache
	if manifest != nil {
		opts.MaxDepth = manifest.Config.Instantiation.MaxDepth
		opts.MaxDiagnostics = manifest.Config.Instantiation.MaxDiagnostics
		if manifest.Config.Cache.Enabled {
			c, err := OpenSnapshotCache(manifest.CachePath())
			if err != nil {
				return nil, fmt.Errorf("open snapshot cache: %w", err)
			}
			cache = c
		}
	}
	return &Driver{
		Ctx:      templates.NewContext(opts),
		manifest: manifest,
		cache:    cache,
	}, nil
}

// Run drives every request in order. Requests that fail leave their
// diagnostics in the bag and do not stop later requests; the caller inspects
// Bag.HasErrors for the overall verdict.
func (d *Driver) Run(reqs []Request) *Result {
	res := &Result{Bag: d.Ctx.Bag}
	for _, req := range reqs {
		name := d.Ctx.Strings.Intern(req.Name)
		phase := req.Phase
		if phase == templates.PhaseNone {
			phase = templates.PhaseFull
		}

		var inst *templates.Instance
		var err error
		if req.Overload {
			inst, err = templates.ResolveOverload(d.Ctx, name, req.Args, req.Span)
		} else {
			inst, err = templates.InstantiateToPhase(d.Ctx, name, req.Args, phase, req.Span)
		}
		if err != nil {
			continue
		}
		res.Instances = append(res.Instances, inst)
	}
	return res
}

// Program returns every instantiation of the compilation in registration
// order: exactly one substituted declaration per key.
func (d *Driver) Program() []*templates.Instance {
	return d.Ctx.Registry.Instances()
}

// SaveSnapshot persists the instantiation cache under a key derived from the
// request list. A disabled cache makes this a no-op.
func (d *Driver) SaveSnapshot(reqs []Request) error {
	if d.cache == nil {
		return nil
	}
	snap := d.Ctx.Snapshot()
	return d.cache.Put(d.snapshotKey(reqs), snap)
}

// LoadSnapshot fetches a previously saved snapshot for the same request list.
func (d *Driver) LoadSnapshot(reqs []Request) (templates.Snapshot, bool, error) {
	if d.cache == nil {
		return templates.Snapshot{}, false, nil
	}
	return d.cache.Get(d.snapshotKey(reqs))
}

// snapshotKey digests the package name and the normalized request list, so a
// changed manifest or argument set never replays a stale snapshot.
func (d *Driver) snapshotKey(reqs []Request) project.Digest {
	parts := make([]string, 0, 1+2*len(reqs))
	if d.manifest != nil {
		parts = append(parts, d.manifest.Config.Package.Name)
	}
	for _, req := range reqs {
		parts = append(parts, req.Name, templates.ArgsKey(req.Args)+"@"+strconv.Itoa(int(req.Phase)))
	}
	return project.HashStrings(parts...)
}
