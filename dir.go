package fatvol

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aligator/fatvol/checkpoint"
)

// ErrReadDir is returned if a directory cluster cannot be read.
var ErrReadDir = errors.New("could not read the directory")

// dirVisitor receives every short entry of a directory together with its
// reconstructed long name. Returning stop = true ends the walk of this
// directory, also across its remaining FAT chain.
type dirVisitor func(entry ExtendedEntryHeader) (stop bool, err error)

// walkDir iterates all entries of the directory starting at the given
// cluster and follows its FAT chain. depth is the nesting level of the
// directory, the root is 0. In nested directories the first two slots of
// each scanned cluster are skipped as they hold the dot entries.
func (v *Volume) walkDir(cluster fatEntry, depth int, visit dirVisitor) error {
	follower := newChainFollower(v, cluster)
	current := cluster.maskedValue()

	for {
		stop, err := v.walkDirCluster(current, depth, visit)
		if err != nil || stop {
			return err
		}

		next, ok, err := follower.next(current)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		current = next
	}
}

// walkDirCluster scans the fixed number of entry slots of one directory
// cluster. A slot with a zero first name byte ends the scan of this cluster,
// the remaining slots are never looked at. The long name state is scoped to
// this one cluster.
func (v *Volume) walkDirCluster(cluster fatEntry, depth int, visit dirVisitor) (bool, error) {
	var longName longNameAssembler
	raw := make([]byte, entrySize)

	for i := 0; i < v.info.entriesPerCluster; i++ {
		offset := v.clusterOffset(cluster) + int64(i)*entrySize
		if err := v.readAt(offset, raw); err != nil {
			return false, checkpoint.Wrap(err, ErrReadDir)
		}

		slot, err := decodeSlot(raw)
		if err != nil {
			return false, checkpoint.Wrap(err, ErrReadDir)
		}

		if slot.kind == slotEndOfDirectory {
			break
		}

		// The dot entries occupy the first two slots of a subdirectory.
		// The root directory has none, there the first slots are content.
		if i <= 1 && depth > 0 {
			continue
		}

		switch slot.kind {
		case slotDeleted:
			// Deleted entries do not even disturb a long name accumulation.
			continue
		case slotLongEntry:
			longName.add(slot.long)
		case slotShortEntry:
			extended := ExtendedEntryHeader{
				EntryHeader:  slot.short,
				ExtendedName: longName.take(checksum(slot.short.Name)),
			}

			stop, err := visit(extended)
			if err != nil || stop {
				return stop, err
			}
		}
	}

	return false, nil
}

// collectDir gathers the visible entries of one directory.
func (v *Volume) collectDir(cluster fatEntry, depth int) ([]ExtendedEntryHeader, error) {
	var entries []ExtendedEntryHeader

	err := v.walkDir(cluster, depth, func(entry ExtendedEntryHeader) (bool, error) {
		if entry.isVisibleDir() || entry.isVisibleFile() {
			entries = append(entries, entry)
		}
		return false, nil
	})
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	return entries, nil
}

// readRoot lists the root directory.
func (v *Volume) readRoot() ([]ExtendedEntryHeader, error) {
	return v.collectDir(v.info.RootCluster, 0)
}

// readDir lists a subdirectory starting at the given cluster.
func (v *Volume) readDir(cluster fatEntry) ([]ExtendedEntryHeader, error) {
	return v.collectDir(cluster, 1)
}

// ListTree writes the recursive listing of the whole directory tree to w,
// starting at the root cluster. Each line is prefixed by one dash per
// nesting level. Entries with a valid long name get a long name line
// directly followed by their short name line.
func (v *Volume) ListTree(w io.Writer) error {
	return v.listTree(w, v.info.RootCluster, 0)
}

func (v *Volume) listTree(w io.Writer, cluster fatEntry, depth int) error {
	marks := strings.Repeat("-", depth)

	return v.walkDir(cluster, depth, func(entry ExtendedEntryHeader) (bool, error) {
		switch {
		case entry.isVisibleDir():
			if entry.ExtendedName != "" {
				fmt.Fprintf(w, "%sLong Name Directory: %s\n", marks, entry.ExtendedName)
				fmt.Fprintf(w, "%sShort Name Directory: %s\n", marks, entry.BaseName())
			} else {
				fmt.Fprintf(w, "%sDirectory: %s\n", marks, entry.BaseName())
			}

			if err := v.listTree(w, entry.FirstCluster(), depth+1); err != nil {
				return true, err
			}
		case entry.isVisibleFile():
			if entry.ExtendedName != "" {
				fmt.Fprintf(w, "%sLong Name File: %s\n", marks, entry.ExtendedName)
			}
			fmt.Fprintf(w, "%sShort Name File: %s\n", marks, entry.DisplayName())
		}

		return false, nil
	})
}
