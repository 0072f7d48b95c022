package userdict

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"

	"github.com/tchap/go-patricia/v2/patricia"

	"lexime/dict"
	"lexime/lexerr"
)

// Magic and Version identify the LXUW on-disk format: the same shape as
// LXDX (spec §6) — magic, version, trie-bytes length, entries-bytes length,
// trie bytes, entries bytes — but trie_bytes here is a flat reading index
// rather than a compressed trie, since the user dictionary is expected to
// stay small.
const (
	Magic   = "LXUW"
	Version = 1
)

var (
	errBadMagic   = errors.New("userdict: bad magic")
	errBadVersion = errors.New("userdict: unsupported version")
	errTruncated  = errors.New("userdict: truncated payload")
)

// Save writes the dictionary to path in LXUW format, atomically.
func (d *Dictionary) Save(path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	type readingEntries struct {
		reading string
		entries []dict.Entry
	}
	var byReading []readingEntries
	_ = d.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		byReading = append(byReading, readingEntries{reading: string(p), entries: item.([]dict.Entry)})
		return nil
	})

	var strtab bytes.Buffer
	offsets := map[string]uint32{}
	intern := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint32(strtab.Len())
		strtab.WriteString(s)
		strtab.WriteByte(0)
		offsets[s] = off
		return off
	}

	var index bytes.Buffer
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(byReading)))
	index.Write(u32[:])

	var entries bytes.Buffer
	entryCount := uint32(0)

	for _, re := range byReading {
		readingOff := intern(re.reading)
		binary.LittleEndian.PutUint32(u32[:], readingOff)
		index.Write(u32[:])
		binary.LittleEndian.PutUint32(u32[:], uint32(len(re.entries)))
		index.Write(u32[:])
		for _, e := range re.entries {
			surfOff := intern(e.Surface)
			binary.LittleEndian.PutUint32(u32[:], surfOff)
			entries.Write(u32[:])
			var u16 [2]byte
			binary.LittleEndian.PutUint16(u16[:], e.LeftID)
			entries.Write(u16[:])
			binary.LittleEndian.PutUint16(u16[:], e.RightID)
			entries.Write(u16[:])
			binary.LittleEndian.PutUint16(u16[:], uint16(e.WordCost))
			entries.Write(u16[:])
			entries.WriteByte(byte(e.Role))
			entryCount++
		}
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	out.WriteByte(Version)
	binary.LittleEndian.PutUint32(u32[:], uint32(index.Len()))
	out.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(entries.Len()+4+strtab.Len()))
	out.Write(u32[:])
	out.Write(index.Bytes())
	binary.LittleEndian.PutUint32(u32[:], entryCount)
	out.Write(u32[:])
	out.Write(entries.Bytes())
	out.Write(strtab.Bytes())

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "userdict.Save.write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return lexerr.Wrap(lexerr.FileIo, "userdict.Save.rename", path, err)
	}
	return nil
}

// Load reads an LXUW file. If path does not exist, Load returns an empty
// dictionary and a nil error.
func Load(path string) (*Dictionary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, lexerr.Wrap(lexerr.FileIo, "userdict.Load.read", path, err)
	}
	return FromBytes(b)
}

// FromBytes decodes an in-memory LXUW image.
func FromBytes(b []byte) (*Dictionary, error) {
	if len(b) < 4+1+4+4 {
		return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes", "", errTruncated)
	}
	if string(b[0:4]) != Magic {
		return nil, lexerr.Wrap(lexerr.InvalidHeader, "userdict.FromBytes", "", errBadMagic)
	}
	if b[4] != Version {
		return nil, lexerr.Wrap(lexerr.UnsupportedVersion, "userdict.FromBytes", "", errBadVersion)
	}
	indexLen := int(binary.LittleEndian.Uint32(b[5:9]))
	_ = int(binary.LittleEndian.Uint32(b[9:13]))
	off := 13

	if off+indexLen > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.index", "", errTruncated)
	}
	index := b[off : off+indexLen]
	off += indexLen

	if len(index) < 4 {
		return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.index_count", "", errTruncated)
	}
	readingCount := int(binary.LittleEndian.Uint32(index[0:4]))
	iOff := 4

	type readingHdr struct {
		readingOff uint32
		count      uint32
	}
	hdrs := make([]readingHdr, 0, readingCount)
	for i := 0; i < readingCount; i++ {
		if iOff+8 > len(index) {
			return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.reading_hdr", "", errTruncated)
		}
		h := readingHdr{
			readingOff: binary.LittleEndian.Uint32(index[iOff : iOff+4]),
			count:      binary.LittleEndian.Uint32(index[iOff+4 : iOff+8]),
		}
		iOff += 8
		hdrs = append(hdrs, h)
	}

	if off+4 > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.entry_count", "", errTruncated)
	}
	entryCount := int(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4

	type rawEntry struct {
		surfaceOffset uint32
		leftID        uint16
		rightID       uint16
		wordCost      int16
		role          dict.Role
	}
	raws := make([]rawEntry, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		if off+11 > len(b) {
			return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.entry", "", errTruncated)
		}
		r := rawEntry{
			surfaceOffset: binary.LittleEndian.Uint32(b[off : off+4]),
			leftID:        binary.LittleEndian.Uint16(b[off+4 : off+6]),
			rightID:       binary.LittleEndian.Uint16(b[off+6 : off+8]),
			wordCost:      int16(binary.LittleEndian.Uint16(b[off+8 : off+10])),
			role:          dict.Role(b[off+10]),
		}
		off += 11
		raws = append(raws, r)
	}

	strtab := b[off:]

	d := New()
	ri := 0
	for _, h := range hdrs {
		reading := lookupString(strtab, h.readingOff)
		es := make([]dict.Entry, 0, h.count)
		for c := uint32(0); c < h.count; c++ {
			if ri >= len(raws) {
				return nil, lexerr.Wrap(lexerr.Deserialize, "userdict.FromBytes.mismatch", "", errTruncated)
			}
			r := raws[ri]
			ri++
			es = append(es, dict.Entry{
				Reading:  reading,
				Surface:  lookupString(strtab, r.surfaceOffset),
				LeftID:   r.leftID,
				RightID:  r.rightID,
				WordCost: r.wordCost,
				Role:     r.role,
			})
		}
		d.trie.Insert(patricia.Prefix(reading), es)
	}
	return d, nil
}

func lookupString(strtab []byte, offset uint32) string {
	end := offset
	for end < uint32(len(strtab)) && strtab[end] != 0 {
		end++
	}
	return string(strtab[offset:end])
}
