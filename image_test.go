package fatvol

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// testImage assembles a minimal FAT32 volume in memory. The declared total
// sector count intentionally exceeds the buffer that is actually built, the
// decoder computes offsets from the geometry fields and never from the
// image size.
type testImage struct {
	bytesPerSector    uint16
	sectorsPerCluster uint8
	reservedSectors   uint16
	numFATs           uint8
	fatSize           uint32
	totalSectors      uint32
	rootCluster       uint32
	media             byte
	freeCount         uint32
	fsInfoLead        uint32
	jumpByte          byte
	reservedBytes     [12]byte

	// fat0 and fat1 override the sentinel entries if set.
	fat0 *uint32
	fat1 *uint32

	fat          map[uint32]uint32
	clusters     map[uint32][]byte
	dataClusters uint32
}

func newTestImage() *testImage {
	return &testImage{
		bytesPerSector:    512,
		sectorsPerCluster: 1,
		reservedSectors:   32,
		numFATs:           2,
		fatSize:           16,
		totalSectors:      70000,
		rootCluster:       2,
		media:             0xF8,
		freeCount:         1000,
		fsInfoLead:        fsInfoLeadSignature,
		jumpByte:          0xEB,
		fat:               map[uint32]uint32{},
		clusters:          map[uint32][]byte{},
		dataClusters:      64,
	}
}

func (img *testImage) bytesPerCluster() int {
	return int(img.bytesPerSector) * int(img.sectorsPerCluster)
}

// cluster returns the buffer for a data cluster, creating it zeroed on
// first use.
func (img *testImage) cluster(n uint32) []byte {
	if _, ok := img.clusters[n]; !ok {
		img.clusters[n] = make([]byte, img.bytesPerCluster())
	}
	return img.clusters[n]
}

func (img *testImage) setFat(cluster, value uint32) {
	img.fat[cluster] = value
}

// chain links the given clusters into one FAT chain terminated by an end
// of chain marker.
func (img *testImage) chain(clusters ...uint32) {
	for i, c := range clusters {
		if i == len(clusters)-1 {
			img.setFat(c, endOfClusterChain)
		} else {
			img.setFat(c, clusters[i+1])
		}
	}
}

// writeFile chains the given clusters and spreads content across them.
func (img *testImage) writeFile(clusters []uint32, content []byte) {
	img.chain(clusters...)
	for _, c := range clusters {
		buffer := img.cluster(c)
		n := copy(buffer, content)
		content = content[n:]
	}
}

// shortName11 builds the fixed 11 byte short name field.
func shortName11(name, ext string) [11]byte {
	var name11 [11]byte
	copy(name11[:], "           ")
	copy(name11[0:8], name)
	copy(name11[8:11], ext)
	return name11
}

// shortEntry places a short name entry into a directory cluster slot.
func (img *testImage) shortEntry(dirCluster uint32, slot int, name, ext string, attr byte, firstCluster, size uint32) {
	raw := make([]byte, entrySize)
	name11 := shortName11(name, ext)
	copy(raw[0:11], name11[:])
	raw[11] = attr
	binary.LittleEndian.PutUint16(raw[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(raw[22:24], 0x7C00)            // 15:32:00
	binary.LittleEndian.PutUint16(raw[24:26], (41<<9)|(6<<5)|12) // 2021-06-12
	binary.LittleEndian.PutUint16(raw[26:28], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(raw[28:32], size)
	img.rawEntry(dirCluster, slot, raw)
}

// longEntry places a VFAT long name fragment into a directory cluster slot.
// Up to 13 UTF-16 code units are written, the remainder is filled with one
// terminator and 0xFFFF padding like real drivers do.
func (img *testImage) longEntry(dirCluster uint32, slot int, sequence, sum byte, units []uint16) {
	full := make([]uint16, longNameUnitsPerEntry)
	n := copy(full, units)
	if n < len(full) {
		full[n] = 0x0000
		for i := n + 1; i < len(full); i++ {
			full[i] = 0xFFFF
		}
	}

	raw := make([]byte, entrySize)
	raw[0] = sequence
	raw[11] = attrLongName
	raw[12] = 0
	raw[13] = sum
	for i, unit := range full[0:5] {
		binary.LittleEndian.PutUint16(raw[1+2*i:], unit)
	}
	for i, unit := range full[5:11] {
		binary.LittleEndian.PutUint16(raw[14+2*i:], unit)
	}
	for i, unit := range full[11:13] {
		binary.LittleEndian.PutUint16(raw[28+2*i:], unit)
	}
	img.rawEntry(dirCluster, slot, raw)
}

// deletedEntry places a deleted marker into a directory cluster slot.
func (img *testImage) deletedEntry(dirCluster uint32, slot int) {
	raw := make([]byte, entrySize)
	raw[0] = 0xE5
	img.rawEntry(dirCluster, slot, raw)
}

// dotEntries fills the first two slots of a subdirectory cluster.
func (img *testImage) dotEntries(dirCluster, parent uint32) {
	img.shortEntry(dirCluster, 0, ".", "", attrDirectory, dirCluster, 0)
	img.shortEntry(dirCluster, 1, "..", "", attrDirectory, parent, 0)
}

func (img *testImage) rawEntry(dirCluster uint32, slot int, raw []byte) {
	buffer := img.cluster(dirCluster)
	copy(buffer[slot*entrySize:], raw)
}

func longNameUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func (img *testImage) build() *bytes.Reader {
	fatStart := int(img.reservedSectors) * int(img.bytesPerSector)
	dataStart := (int(img.reservedSectors) + int(img.fatSize)*int(img.numFATs)) * int(img.bytesPerSector)
	buffer := make([]byte, dataStart+int(img.dataClusters)*img.bytesPerCluster())

	// Boot sector.
	copy(buffer[0:3], []byte{img.jumpByte, 0x3C, 0x90})
	copy(buffer[3:11], "MSDOS5.0")
	binary.LittleEndian.PutUint16(buffer[11:], img.bytesPerSector)
	buffer[13] = img.sectorsPerCluster
	binary.LittleEndian.PutUint16(buffer[14:], img.reservedSectors)
	buffer[16] = img.numFATs
	buffer[21] = img.media
	binary.LittleEndian.PutUint16(buffer[24:], 32)
	binary.LittleEndian.PutUint16(buffer[26:], 64)
	binary.LittleEndian.PutUint32(buffer[32:], img.totalSectors)
	binary.LittleEndian.PutUint32(buffer[36:], img.fatSize)
	binary.LittleEndian.PutUint32(buffer[44:], img.rootCluster)
	binary.LittleEndian.PutUint16(buffer[48:], 1)
	binary.LittleEndian.PutUint16(buffer[50:], 6)
	copy(buffer[52:64], img.reservedBytes[:])
	buffer[64] = 0x80
	buffer[66] = 0x29
	binary.LittleEndian.PutUint32(buffer[67:], 0x12345678)
	copy(buffer[71:82], "TESTVOLUME ")
	copy(buffer[82:90], "FAT32   ")
	buffer[510] = 0x55
	buffer[511] = 0xAA

	// FS information sector.
	fsinfo := buffer[int(img.bytesPerSector):]
	binary.LittleEndian.PutUint32(fsinfo[0:], img.fsInfoLead)
	binary.LittleEndian.PutUint32(fsinfo[484:], 0x61417272)
	binary.LittleEndian.PutUint32(fsinfo[488:], img.freeCount)
	binary.LittleEndian.PutUint32(fsinfo[492:], 3)
	binary.LittleEndian.PutUint32(fsinfo[508:], 0xAA550000)

	// FAT. Clusters holding content default to end of chain if the test
	// did not link them explicitly.
	fat := buffer[fatStart:]
	fat0 := uint32(img.media) + 0x0FFFFF00
	if img.fat0 != nil {
		fat0 = *img.fat0
	}
	fat1 := uint32(0x0FFFFFFF)
	if img.fat1 != nil {
		fat1 = *img.fat1
	}
	binary.LittleEndian.PutUint32(fat[0:], fat0)
	binary.LittleEndian.PutUint32(fat[4:], fat1)
	for cluster := range img.clusters {
		if _, ok := img.fat[cluster]; !ok {
			img.fat[cluster] = endOfClusterChain
		}
	}
	for cluster, value := range img.fat {
		binary.LittleEndian.PutUint32(fat[4*cluster:], value)
	}

	// Data region.
	for cluster, content := range img.clusters {
		offset := dataStart + (int(cluster)-2)*img.bytesPerCluster()
		copy(buffer[offset:], content)
	}

	return bytes.NewReader(buffer)
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
