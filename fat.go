package fatvol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aligator/fatvol/checkpoint"
)

// ErrCorruptChain is returned if a FAT cluster chain loops back onto itself.
var ErrCorruptChain = errors.New("the FAT cluster chain contains a cycle")

const (
	// fatEntrySize is the size of one FAT32 table entry in bytes.
	fatEntrySize = 4

	// fatEntryMask selects the 28 significant bits of a FAT32 entry.
	// The top 4 bits are reserved and have to be ignored.
	fatEntryMask = 0x0FFFFFFF

	// endOfClusterChain is the lowest FAT value meaning "no further cluster".
	endOfClusterChain = 0x0FFFFFF8
)

// fatEntry is one 32 bit FAT table value. Only the low 28 bits are
// significant, Value applies the mask.
type fatEntry uint32

func (e fatEntry) Value() uint32 {
	return uint32(e) & fatEntryMask
}

// IsFree reports an unallocated cluster.
func (e fatEntry) IsFree() bool {
	return e.Value() == 0
}

// IsReservedTemp reports the temporary reserved value 1 which may occur
// while an allocator is working on the cluster.
func (e fatEntry) IsReservedTemp() bool {
	return e.Value() == 1
}

// IsNextCluster reports a value which points to the next cluster of a chain.
func (e fatEntry) IsNextCluster() bool {
	v := e.Value()
	return v >= 2 && v <= 0x0FFFFFEF
}

// IsReservedSometimes reports the range 0x0FFFFFF0 - 0x0FFFFFF5 which is
// reserved but shows up on some volumes in the wild.
func (e fatEntry) IsReservedSometimes() bool {
	v := e.Value()
	return v >= 0x0FFFFFF0 && v <= 0x0FFFFFF5
}

// IsReserved reports the reserved value 0x0FFFFFF6.
func (e fatEntry) IsReserved() bool {
	return e.Value() == 0x0FFFFFF6
}

// IsBad reports a cluster marked as bad.
func (e fatEntry) IsBad() bool {
	return e.Value() == 0x0FFFFFF7
}

// IsEOF reports an end of chain marker.
func (e fatEntry) IsEOF() bool {
	return e.Value() >= endOfClusterChain
}

// ReadAsNextCluster reports whether a chain walker should follow this value.
// This matches the original behavior of following everything below the end
// of chain threshold, reserved and bad values included.
func (e fatEntry) ReadAsNextCluster() bool {
	return !e.IsEOF()
}

// ReadAsEOF reports whether a chain walker should stop at this value.
func (e fatEntry) ReadAsEOF() bool {
	return e.IsEOF()
}

// nextCluster looks up the FAT value for the given cluster index.
// There is no bounds check against the cluster count of the volume, a bogus
// index simply reads whatever bytes are at the computed offset.
func (v *Volume) nextCluster(cluster fatEntry) (fatEntry, error) {
	buffer := make([]byte, fatEntrySize)
	offset := v.info.fatStart + fatEntrySize*int64(cluster.Value())
	if err := v.readAt(offset, buffer); err != nil {
		return 0, checkpoint.Wrap(err, ErrReadVolume)
	}

	return fatEntry(binary.LittleEndian.Uint32(buffer)), nil
}

// chainFollower walks a single FAT cluster chain and remembers every
// cluster it has seen. A chain which revisits a cluster would never
// terminate, the follower reports that as ErrCorruptChain instead.
type chainFollower struct {
	volume  *Volume
	visited map[uint32]struct{}
}

func newChainFollower(v *Volume, start fatEntry) *chainFollower {
	return &chainFollower{
		volume:  v,
		visited: map[uint32]struct{}{start.Value(): {}},
	}
}

// next returns the cluster following the given one.
// ok is false if the chain ends there.
func (c *chainFollower) next(cluster fatEntry) (next fatEntry, ok bool, err error) {
	entry, err := c.volume.nextCluster(cluster)
	if err != nil {
		return 0, false, err
	}

	if entry.ReadAsEOF() {
		return entry, false, nil
	}

	if _, seen := c.visited[entry.Value()]; seen {
		return 0, false, checkpoint.Wrap(ErrCorruptChain, fmt.Errorf("cluster %d revisited", entry.Value()))
	}
	c.visited[entry.Value()] = struct{}{}

	return fatEntry(entry.Value()), true, nil
}
