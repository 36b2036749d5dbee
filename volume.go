package fatvol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aligator/fatvol/checkpoint"
)

const (
	// fsInfoLeadSignature must be the first field of the FS information sector.
	fsInfoLeadSignature = 0x41615252

	// fat32MinSectors is the minimum total sector count heuristic for FAT32.
	// Anything smaller would be FAT12 or FAT16.
	fat32MinSectors = 65525

	bytesPerKB = 1024
)

// These errors are returned by Open if the image fails one of the structural
// validations. They can be checked using errors.Is.
var (
	ErrReadVolume           = errors.New("could not read the volume")
	ErrInvalidFsInfo        = errors.New("the FS information sector has a wrong lead signature")
	ErrInvalidBootJump      = errors.New("no valid jump instruction at the beginning")
	ErrInvalidRootCluster   = errors.New("the root cluster must be at least 2")
	ErrInvalidFatSize       = errors.New("the FAT size must not be 0")
	ErrTooFewSectors        = errors.New("too few total sectors for a FAT32 volume")
	ErrReservedFieldNonZero = errors.New("a reserved boot sector field is not zero")
	ErrFatEntryZeroMismatch = errors.New("FAT[0] does not match the media byte")
	ErrFatEntryOneMismatch  = errors.New("FAT[1] is not the end of chain marker")
)

// Info contains the geometry of the volume derived from the boot sector.
// It is immutable after Open.
type Info struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSize           uint32
	TotalSectors      uint32
	RootCluster       fatEntry
	Media             byte
	FSInfoSector      uint16

	fatStart          int64
	dataStart         int64
	bytesPerCluster   int64
	entriesPerCluster int
}

// Report contains the volume metadata the way the info command presents it.
// All space values are in KB.
type Report struct {
	Label              string
	OEMName            string
	SerialNumber       uint32
	FreeSpaceKB        int64
	TotalSpaceKB       int64
	UsableSpaceKB      int64
	ClusterSizeSectors uint8
	ClusterSizeBytes   int64
}

// Volume provides read-only access to a FAT32 volume image.
// It bundles the open read handle with the decoded geometry so that no
// state has to live outside of it. A Volume must not be used from multiple
// goroutines at once as all reads share one seek position.
type Volume struct {
	reader io.ReadSeeker
	info   Info
	boot   FAT32SpecificData
	bpb    BPB
	fsinfo FSInfoSector
}

// Open reads the boot sector and the FS information sector from the given
// reader and validates that it contains a structurally sound FAT32 volume.
// Any failed validation aborts with one of the Err* sentinel errors, there
// is no degraded mode.
func Open(reader io.ReadSeeker) (*Volume, error) {
	return open(reader, false)
}

// OpenSkipChecks works like Open but skips the structural validations.
// This may allow reading not perfectly standard volumes. Use with caution!
func OpenSkipChecks(reader io.ReadSeeker) (*Volume, error) {
	return open(reader, true)
}

func open(reader io.ReadSeeker, skipChecks bool) (*Volume, error) {
	v := &Volume{reader: reader}
	if err := v.initialize(); err != nil {
		return nil, err
	}

	if !skipChecks {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (v *Volume) initialize() error {
	// The boot sector region is read with 512 bytes no matter what sector
	// size the BPB declares later. All decoded fields live inside of them.
	sector := make([]byte, 512)
	if err := v.readAt(0, sector); err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}

	if err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &v.bpb); err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}
	if err := binary.Read(bytes.NewReader(v.bpb.FATSpecificData[:]), binary.LittleEndian, &v.boot); err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}

	v.info = Info{
		BytesPerSector:    v.bpb.BytesPerSector,
		SectorsPerCluster: v.bpb.SectorsPerCluster,
		ReservedSectors:   v.bpb.ReservedSectorCount,
		NumFATs:           v.bpb.NumFATs,
		FATSize:           v.boot.FATSize,
		TotalSectors:      v.bpb.TotalSectors32,
		RootCluster:       fatEntry(v.boot.RootCluster.Value()),
		Media:             v.bpb.Media,
		FSInfoSector:      v.boot.FSInfoSector,
	}

	v.info.fatStart = int64(v.info.ReservedSectors) * int64(v.info.BytesPerSector)
	v.info.dataStart = (int64(v.info.ReservedSectors) + int64(v.info.FATSize)*int64(v.info.NumFATs)) * int64(v.info.BytesPerSector)
	v.info.bytesPerCluster = int64(v.info.SectorsPerCluster) * int64(v.info.BytesPerSector)
	v.info.entriesPerCluster = int(v.info.bytesPerCluster / entrySize)

	// The FS information sector is read even with checks skipped as the
	// free space report depends on it.
	fsinfo := make([]byte, 512)
	if err := v.readAt(int64(v.info.BytesPerSector)*int64(v.info.FSInfoSector), fsinfo); err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}
	if err := binary.Read(bytes.NewReader(fsinfo), binary.LittleEndian, &v.fsinfo); err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}

	return nil
}

// validate runs the structural checks in a fixed order so that the first
// diagnostic is always the same for the same image.
func (v *Volume) validate() error {
	if v.fsinfo.LeadSignature != fsInfoLeadSignature {
		return checkpoint.From(ErrInvalidFsInfo)
	}

	if v.bpb.BSJumpBoot[0] != 0xEB && v.bpb.BSJumpBoot[0] != 0xE9 {
		return checkpoint.From(ErrInvalidBootJump)
	}

	if v.boot.RootCluster.Value() < 2 {
		return checkpoint.From(ErrInvalidRootCluster)
	}

	if v.boot.FATSize == 0 {
		return checkpoint.From(ErrInvalidFatSize)
	}

	if v.bpb.TotalSectors32 < fat32MinSectors {
		return checkpoint.From(ErrTooFewSectors)
	}

	for _, b := range v.boot.Reserved {
		if b != 0 {
			return checkpoint.From(ErrReservedFieldNonZero)
		}
	}

	// FAT[0] carries the media byte with all high bits set.
	// Note that this is intentionally an addition and not a bitwise or,
	// exactly like the sentinel is documented in the FAT32 specification.
	fat0, err := v.nextCluster(0)
	if err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}
	if fat0.Value() != uint32(v.info.Media)+0x0FFFFF00 {
		return checkpoint.From(ErrFatEntryZeroMismatch)
	}

	fat1, err := v.nextCluster(1)
	if err != nil {
		return checkpoint.Wrap(err, ErrReadVolume)
	}
	if fat1.Value() != 0x0FFFFFFF {
		return checkpoint.From(ErrFatEntryOneMismatch)
	}

	return nil
}

// readAt reads exactly len(buffer) bytes from the given absolute offset.
func (v *Volume) readAt(offset int64, buffer []byte) error {
	if _, err := v.reader.Seek(offset, io.SeekStart); err != nil {
		return checkpoint.From(err)
	}
	if _, err := io.ReadFull(v.reader, buffer); err != nil {
		return checkpoint.From(err)
	}
	return nil
}

// clusterOffset returns the absolute byte offset of a data cluster.
// The first two FAT slots do not map to data, so cluster 2 starts directly
// at the data region.
func (v *Volume) clusterOffset(cluster fatEntry) int64 {
	return v.info.dataStart + (int64(cluster.Value())-2)*v.info.bytesPerCluster
}

// Info returns the decoded volume geometry.
func (v *Volume) Info() Info {
	return v.info
}

// Label returns the volume label from the boot sector with the trailing
// padding removed.
func (v *Volume) Label() string {
	return strings.TrimRight(string(v.boot.BSVolumeLabel[:]), " ")
}

// OEMName returns the OEM name from the boot sector with the trailing
// padding removed.
func (v *Volume) OEMName() string {
	return strings.TrimRight(string(v.bpb.BSOEMName[:]), " ")
}

// Report collects the volume metadata for the info command.
func (v *Volume) Report() Report {
	bytesPerSector := int64(v.info.BytesPerSector)
	sectorsPerCluster := int64(v.info.SectorsPerCluster)
	fatSectors := int64(v.info.FATSize) * int64(v.info.NumFATs)

	return Report{
		Label:              v.Label(),
		OEMName:            v.OEMName(),
		SerialNumber:       v.boot.BSVolumeID,
		FreeSpaceKB:        int64(v.fsinfo.FreeCount) * bytesPerSector * sectorsPerCluster / bytesPerKB,
		TotalSpaceKB:       int64(v.info.TotalSectors) * bytesPerSector / bytesPerKB,
		UsableSpaceKB:      (int64(v.info.TotalSectors) - int64(v.info.ReservedSectors) - fatSectors) * bytesPerSector / bytesPerKB,
		ClusterSizeSectors: v.info.SectorsPerCluster,
		ClusterSizeBytes:   v.info.bytesPerCluster,
	}
}

// WriteTo prints the volume report line by line.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"Drive name: %s\n"+
			"OEM name: %s\n"+
			"Serial number: %08X\n"+
			"Free space is %d KB\n"+
			"Total space is %d KB\n"+
			"Total usable space %d KB\n"+
			"Cluster size in sectors %d\n"+
			"Cluster size is %d bytes\n",
		r.Label, r.OEMName, r.SerialNumber, r.FreeSpaceKB, r.TotalSpaceKB,
		r.UsableSpaceKB, r.ClusterSizeSectors, r.ClusterSizeBytes)
	return int64(n), err
}
