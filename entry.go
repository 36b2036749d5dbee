package fatvol

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"strings"
	"unicode/utf16"

	"github.com/aligator/fatvol/checkpoint"
)

const (
	// entrySize is the size of one directory entry slot in bytes.
	entrySize = 32

	attrReadOnly     = 0x01
	attrHidden       = 0x02
	attrSystem       = 0x04
	attrVolumeID     = 0x08
	attrDirectory    = 0x10
	attrArchive      = 0x20
	attrLongName     = attrReadOnly | attrHidden | attrSystem | attrVolumeID
	attrLongNameMask = attrLongName | attrDirectory | attrArchive

	// lastLongEntry flags the fragment with the highest ordinal, which is
	// stored first on disk.
	lastLongEntry = 0x40

	// longNameUnitsPerEntry is the number of UTF-16 code units one long
	// filename fragment carries across its three name fields.
	longNameUnitsPerEntry = 13
)

type slotKind int

const (
	// slotEndOfDirectory terminates the scan of a directory cluster.
	slotEndOfDirectory slotKind = iota
	// slotDeleted marks an entry whose first name byte is 0xE5.
	slotDeleted
	slotShortEntry
	slotLongEntry
)

// dirSlot is one decoded directory entry slot. Depending on kind either
// the short or the long interpretation is filled.
type dirSlot struct {
	kind  slotKind
	short EntryHeader
	long  LongFilenameEntry
}

// decodeSlot interprets one raw 32 byte directory slot exactly once,
// either as a short name entry or as a long filename fragment.
func decodeSlot(raw []byte) (dirSlot, error) {
	switch raw[0] {
	case 0x00:
		return dirSlot{kind: slotEndOfDirectory}, nil
	case 0xE5:
		return dirSlot{kind: slotDeleted}, nil
	}

	if raw[11]&attrLongNameMask == attrLongName {
		slot := dirSlot{kind: slotLongEntry}
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &slot.long); err != nil {
			return dirSlot{}, checkpoint.Wrap(err, ErrReadVolume)
		}
		return slot, nil
	}

	slot := dirSlot{kind: slotShortEntry}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &slot.short); err != nil {
		return dirSlot{}, checkpoint.Wrap(err, ErrReadVolume)
	}
	return slot, nil
}

// BaseName returns the 8 character name part without the trailing padding.
func (h EntryHeader) BaseName() string {
	return strings.TrimRight(string(h.Name[:8]), " ")
}

// Extension returns the 3 character extension part without the trailing
// padding.
func (h EntryHeader) Extension() string {
	return strings.TrimRight(string(h.Name[8:11]), " ")
}

// DisplayName returns the dotted 8.3 name. The dot is omitted if the
// extension is entirely blank.
func (h EntryHeader) DisplayName() string {
	name := h.BaseName()
	ext := h.Extension()

	if ext != "" {
		name += "."
	}

	return name + ext
}

// FirstCluster combines the split high and low cluster fields.
func (h EntryHeader) FirstCluster() fatEntry {
	return fatEntry(uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO)).maskedValue()
}

func (e fatEntry) maskedValue() fatEntry {
	return fatEntry(e.Value())
}

// IsDir reports whether the directory attribute bit is set.
func (h EntryHeader) IsDir() bool {
	return h.Attribute&attrDirectory == attrDirectory
}

// isVisibleDir reports a directory entry which should show up in listings
// and path resolution: no hidden, system or volume id bit set.
func (h EntryHeader) isVisibleDir() bool {
	return h.IsDir() &&
		h.Attribute&attrHidden == 0 &&
		h.Attribute&attrSystem == 0 &&
		h.Attribute&attrVolumeID == 0
}

// isVisibleFile is the counterpart of isVisibleDir for plain files.
func (h EntryHeader) isVisibleFile() bool {
	return !h.IsDir() &&
		h.Attribute&attrHidden == 0 &&
		h.Attribute&attrSystem == 0 &&
		h.Attribute&attrVolumeID == 0
}

// checksum computes the 8 bit rotate-right-and-add sum over the 11 name
// bytes of a short entry. Long filename fragments store this sum to bind
// them to their short entry.
func checksum(name [11]byte) byte {
	var sum byte
	for _, b := range name {
		sum = bits.RotateLeft8(sum, -1) + b
	}
	return sum
}

// longNameFragment is the name payload of one long filename entry in
// on-disk order: 5 + 6 + 2 UTF-16 code units.
type longNameFragment [longNameUnitsPerEntry]uint16

func (e LongFilenameEntry) fragment() longNameFragment {
	var f longNameFragment
	copy(f[0:5], e.First[:])
	copy(f[5:11], e.Second[:])
	copy(f[11:13], e.Third[:])
	return f
}

// longNameAssembler accumulates the long filename fragments which precede a
// short entry on disk. Fragments arrive with descending ordinals, the last
// logical fragment first. Any ordering or checksum violation discards the
// whole accumulation, a broken long name is never an error.
type longNameAssembler struct {
	active      bool
	checksum    byte
	lastOrdinal byte
	fragments   []longNameFragment
}

// start begins a new accumulation. It only accepts a fragment that is
// flagged as the last logical one and has a zero type byte.
func (a *longNameAssembler) start(e LongFilenameEntry) {
	a.reset()

	if e.Sequence&lastLongEntry != lastLongEntry || e.EntryType != 0 {
		return
	}

	a.active = true
	a.checksum = e.Checksum
	a.lastOrdinal = e.Sequence
	a.fragments = append(a.fragments, e.fragment())
}

// add continues an accumulation. The fragment must carry the same checksum,
// a strictly smaller ordinal and a zero type byte, otherwise everything
// collected so far is discarded.
func (a *longNameAssembler) add(e LongFilenameEntry) {
	if !a.active {
		a.start(e)
		return
	}

	if e.Checksum != a.checksum || e.Sequence >= a.lastOrdinal || e.EntryType != 0 {
		a.reset()
		return
	}

	a.lastOrdinal = e.Sequence
	a.fragments = append(a.fragments, e.fragment())
}

func (a *longNameAssembler) reset() {
	a.active = false
	a.checksum = 0
	a.lastOrdinal = 0
	a.fragments = nil
}

// take returns the reconstructed name if the accumulation is complete and
// bound to the given short name checksum, otherwise an empty string.
// The accumulation is discarded in both cases.
func (a *longNameAssembler) take(shortNameSum byte) string {
	defer a.reset()

	if !a.active || a.checksum != shortNameSum {
		return ""
	}

	// Fragments were collected last logical one first, so walking them in
	// reverse yields the name front to back. Terminator (0x0000) and
	// padding (0xFFFF) code units are not part of the name.
	units := make([]uint16, 0, len(a.fragments)*longNameUnitsPerEntry)
	for i := len(a.fragments) - 1; i >= 0; i-- {
		for _, unit := range a.fragments[i] {
			if unit == 0x0000 || unit == 0xFFFF {
				continue
			}
			units = append(units, unit)
		}
	}

	return string(utf16.Decode(units))
}
