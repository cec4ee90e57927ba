package record

// Patch is a partial mutation of a record: field key to new value.
// Keys use the wire names of the record's fields (snake_case).
type Patch map[string]any

// Clone returns a copy of the patch. Nested values are shared; patches
// carry only scalar and string-slice values in practice.
func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Record is the contract every cached resource type satisfies.
//
// The type parameter is the implementing type itself (e.g.
// *deal.Deal implements Record[*deal.Deal]) so that Clone and Apply
// round-trip without casts. Clone must be a deep copy: the cache keeps
// clones as rollback snapshots and compares them for equality after a
// failed mutation.
type Record[T any] interface {
	// RecordID returns the server-assigned identifier. Empty for a
	// record that has not been created remotely yet.
	RecordID() string

	// Clone returns a deep copy of the record.
	Clone() T

	// Apply returns a copy of the record with the patch merged in.
	// Unknown keys are ignored; the server is the authority on what a
	// patch may contain.
	Apply(Patch) T
}
