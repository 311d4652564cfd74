package compare

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

var identityFallbacks = []string{"Field", "field", "name", "Name", "column_name", "COLUMN_NAME"}

// DiffColumns lists the attribute-level differences between two column lists
// of the same table.
//
// In positional mode the i-th master column is compared with the i-th peer
// column and nothing past the shorter list is examined; callers that need to
// know about trailing columns must compare the lengths themselves. In name
// mode columns are paired by their identity attribute and a master column the
// peer lacks produces one difference on the identity attribute.
//
// Only attributes present on the master descriptor are examined.
func DiffColumns(master, peer []schema.ColumnDescriptor, opts Options) []ColumnDifference {
	if opts.mode() == ModeByName {
		return diffByName(master, peer, opts.identity())
	}
	return diffPositional(master, peer, opts.identity())
}

func diffPositional(master, peer []schema.ColumnDescriptor, identity string) []ColumnDifference {
	n := min(len(master), len(peer))

	var diffs []ColumnDifference
	for i := 0; i < n; i++ {
		diffs = append(diffs, diffDescriptor(columnName(master[i], identity, i), master[i], peer[i])...)
	}
	return diffs
}

func diffByName(master, peer []schema.ColumnDescriptor, identity string) []ColumnDifference {
	peerByName := make(map[string]schema.ColumnDescriptor, len(peer))
	for _, col := range peer {
		v, ok := col[identity]
		if !ok {
			continue
		}
		key := fmt.Sprint(v)
		if _, seen := peerByName[key]; !seen {
			peerByName[key] = col
		}
	}

	var diffs []ColumnDifference
	for i, col := range master {
		name := columnName(col, identity, i)

		v, ok := col[identity]
		if !ok {
			// Nothing to align on, fall back to the positional counterpart.
			if i < len(peer) {
				diffs = append(diffs, diffDescriptor(name, col, peer[i])...)
			}
			continue
		}

		counterpart, found := peerByName[fmt.Sprint(v)]
		if !found {
			diffs = append(diffs, ColumnDifference{
				Column:      name,
				Attribute:   identity,
				MasterValue: v,
				PeerValue:   nil,
			})
			continue
		}
		diffs = append(diffs, diffDescriptor(name, col, counterpart)...)
	}
	return diffs
}

func diffDescriptor(name string, master, peer schema.ColumnDescriptor) []ColumnDifference {
	var diffs []ColumnDifference
	for _, key := range master.Keys() {
		mv := master[key]
		pv, ok := peer[key]
		if ok && cmp.Equal(mv, pv, cmpopts.EquateEmpty()) {
			continue
		}
		diffs = append(diffs, ColumnDifference{
			Column:      name,
			Attribute:   key,
			MasterValue: mv,
			PeerValue:   pv,
		})
	}
	return diffs
}

func columnName(col schema.ColumnDescriptor, identity string, position int) string {
	if v, ok := col[identity]; ok && v != nil {
		return fmt.Sprint(v)
	}
	for _, key := range identityFallbacks {
		if v, ok := col[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("#%d", position+1)
}
