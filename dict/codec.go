package dict

import (
	"encoding/binary"
	"errors"

	"github.com/tchap/go-patricia/v2/patricia"
)

var (
	errBadMagic   = errors.New("dict: bad magic")
	errBadVersion = errors.New("dict: unsupported version")
	errTruncated  = errors.New("dict: truncated payload")
)

func patriciaPrefix(s string) patricia.Prefix { return patricia.Prefix(s) }

// encodeTrie serializes reading -> []entry-id as:
//
//	[count:u32]{ [readingLen:u16][reading bytes][idCount:u16][id:u32]... }
func encodeTrie(readingIDs map[string][]uint32) []byte {
	var buf []byte
	var tmp4 [4]byte
	var tmp2 [2]byte
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(readingIDs)))
	buf = append(buf, tmp4[:]...)
	for reading, ids := range readingIDs {
		binary.LittleEndian.PutUint16(tmp2[:], uint16(len(reading)))
		buf = append(buf, tmp2[:]...)
		buf = append(buf, reading...)
		binary.LittleEndian.PutUint16(tmp2[:], uint16(len(ids)))
		buf = append(buf, tmp2[:]...)
		for _, id := range ids {
			binary.LittleEndian.PutUint32(tmp4[:], id)
			buf = append(buf, tmp4[:]...)
		}
	}
	return buf
}

func decodeTrie(b []byte) (map[string][]uint32, error) {
	if len(b) < 4 {
		return nil, errTruncated
	}
	count := binary.LittleEndian.Uint32(b[0:4])
	off := 4
	out := make(map[string][]uint32, count)
	for i := uint32(0); i < count; i++ {
		if off+2 > len(b) {
			return nil, errTruncated
		}
		readingLen := int(binary.LittleEndian.Uint16(b[off : off+2]))
		off += 2
		if off+readingLen > len(b) {
			return nil, errTruncated
		}
		reading := string(b[off : off+readingLen])
		off += readingLen
		if off+2 > len(b) {
			return nil, errTruncated
		}
		idCount := int(binary.LittleEndian.Uint16(b[off : off+2]))
		off += 2
		ids := make([]uint32, idCount)
		for j := 0; j < idCount; j++ {
			if off+4 > len(b) {
				return nil, errTruncated
			}
			ids[j] = binary.LittleEndian.Uint32(b[off : off+4])
			off += 4
		}
		out[reading] = ids
	}
	return out, nil
}

// encodeEntries serializes the flat entry array followed by the string table:
//
//	[count:u32]{ [surfaceOffset:u32][leftID:u16][rightID:u16][wordCost:i16][role:u8] }...
//	[strtabLen:u32][strtab bytes]
func encodeEntries(entries []rawEntry, strtab []byte) []byte {
	var buf []byte
	var tmp4 [4]byte
	var tmp2 [2]byte
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(entries)))
	buf = append(buf, tmp4[:]...)
	for _, e := range entries {
		binary.LittleEndian.PutUint32(tmp4[:], e.SurfaceOffset)
		buf = append(buf, tmp4[:]...)
		binary.LittleEndian.PutUint16(tmp2[:], e.LeftID)
		buf = append(buf, tmp2[:]...)
		binary.LittleEndian.PutUint16(tmp2[:], e.RightID)
		buf = append(buf, tmp2[:]...)
		binary.LittleEndian.PutUint16(tmp2[:], uint16(e.WordCost))
		buf = append(buf, tmp2[:]...)
		buf = append(buf, byte(e.Role))
	}
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(strtab)))
	buf = append(buf, tmp4[:]...)
	buf = append(buf, strtab...)
	return buf
}

func decodeEntries(b []byte) ([]rawEntry, []byte, error) {
	if len(b) < 4 {
		return nil, nil, errTruncated
	}
	count := binary.LittleEndian.Uint32(b[0:4])
	off := 4
	entries := make([]rawEntry, count)
	const recSize = 4 + 2 + 2 + 2 + 1
	for i := uint32(0); i < count; i++ {
		if off+recSize > len(b) {
			return nil, nil, errTruncated
		}
		e := rawEntry{
			SurfaceOffset: binary.LittleEndian.Uint32(b[off : off+4]),
			LeftID:        binary.LittleEndian.Uint16(b[off+4 : off+6]),
			RightID:       binary.LittleEndian.Uint16(b[off+6 : off+8]),
			WordCost:      int16(binary.LittleEndian.Uint16(b[off+8 : off+10])),
			Role:          Role(b[off+10]),
		}
		off += recSize
		entries[i] = e
	}
	if off+4 > len(b) {
		return nil, nil, errTruncated
	}
	strtabLen := binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	if off+int(strtabLen) > len(b) {
		return nil, nil, errTruncated
	}
	return entries, b[off : off+int(strtabLen)], nil
}

// lookupString reads a NUL-terminated string at offset from the string table.
func lookupString(strtab []byte, offset uint32) string {
	i := int(offset)
	if i < 0 || i >= len(strtab) {
		return ""
	}
	end := i
	for end < len(strtab) && strtab[end] != 0 {
		end++
	}
	return string(strtab[i:end])
}
