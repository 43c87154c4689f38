package templates

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// SnapshotEntry is one instantiation in the serialized cache: the owning
// template, the normalized argument key, the derived name, and how far the
// instance was driven.
type SnapshotEntry struct {
	Owner string `msgpack:"owner"`
	Args  string `msgpack:"args"`
	Name  string `msgpack:"name"`
	Phase uint8  `msgpack:"phase"`
	Size  uint32 `msgpack:"size"`
	Align uint32 `msgpack:"align"`
}

// Snapshot is the persisted view of the instantiation cache. It records what
// was instantiated, not the substituted trees; a later run replays
// instantiation requests against it to skip redundant work.
type Snapshot struct {
	Version int             `msgpack:"version"`
	Entries []SnapshotEntry `msgpack:"entries"`
}

// Snapshot serializes the registry's instances in registration order.
func (ctx *CompilationContext) Snapshot() Snapshot {
	instances := ctx.Registry.Instances()
	s := Snapshot{Version: snapshotVersion, Entries: make([]SnapshotEntry, 0, len(instances))}
	for _, inst := range instances {
		owner, _ := ctx.Strings.Lookup(inst.Key.Name)
		s.Entries = append(s.Entries, SnapshotEntry{
			Owner: owner,
			Args:  inst.Key.Args,
			Name:  inst.Name,
			Phase: uint8(inst.Phase),
			Size:  inst.Size,
			Align: inst.Align,
		})
	}
	return s
}

// WriteSnapshot encodes the snapshot as msgpack.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// ReadSnapshot decodes and version-checks a snapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode instantiation snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("instantiation snapshot version %d is not supported", s.Version)
	}
	return s, nil
}
