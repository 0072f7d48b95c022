package dict

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"lexime/lexerr"
)

// Magic and Version identify the LXDX on-disk format (spec §6):
//
//	[4B magic "LXDX"][1B version][trie_bytes_len:u32][entries_bytes_len:u32][trie_bytes][entries_bytes]
//
// Entries are a flat array of (surface_offset:u32, left_id:u16, right_id:u16,
// word_cost:i16, role:u8) indexing a trailing string table; trie_bytes hold, per
// reading, the value-id list into that flat array.
const (
	Magic   = "LXDX"
	Version = 1
)

type rawEntry struct {
	SurfaceOffset uint32
	LeftID        uint16
	RightID       uint16
	WordCost      int16
	Role          Role
}

// Save writes the dictionary to path in LXDX format.
func (d *Dictionary) Save(path string) error {
	buf, err := d.encode()
	if err != nil {
		return lexerr.Wrap(lexerr.FileIo, "dict.Save.encode", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "dict.Save.write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return lexerr.Wrap(lexerr.FileIo, "dict.Save.rename", path, err)
	}
	return nil
}

// Load reads an LXDX file into a new Dictionary.
func Load(path string) (*Dictionary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, lexerr.Wrap(lexerr.FileIo, "dict.Load.read", path, err)
	}
	return FromBytes(b)
}

// FromBytes decodes an in-memory LXDX image, the round-trip counterpart to
// encode/Save (spec §8: Dictionary::from_bytes(d.as_bytes()) == d).
func FromBytes(b []byte) (*Dictionary, error) {
	if len(b) < 4+1+4+4 {
		return nil, lexerr.Wrap(lexerr.Deserialize, "dict.FromBytes", "", io.ErrUnexpectedEOF)
	}
	if string(b[0:4]) != Magic {
		return nil, lexerr.Wrap(lexerr.InvalidHeader, "dict.FromBytes", "", errBadMagic)
	}
	version := b[4]
	if version != Version {
		return nil, lexerr.Wrap(lexerr.UnsupportedVersion, "dict.FromBytes", "", errBadVersion)
	}
	trieLen := binary.LittleEndian.Uint32(b[5:9])
	entriesLen := binary.LittleEndian.Uint32(b[9:13])
	off := 13
	if off+int(trieLen)+int(entriesLen) > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "dict.FromBytes", "", io.ErrUnexpectedEOF)
	}
	trieBytes := b[off : off+int(trieLen)]
	off += int(trieLen)
	entriesBytes := b[off : off+int(entriesLen)]

	entries, strtab, err := decodeEntries(entriesBytes)
	if err != nil {
		return nil, lexerr.Wrap(lexerr.Deserialize, "dict.FromBytes.entries", "", err)
	}
	readings, err := decodeTrie(trieBytes)
	if err != nil {
		return nil, lexerr.Wrap(lexerr.Deserialize, "dict.FromBytes.trie", "", err)
	}

	d := New()
	for reading, ids := range readings {
		list := make([]Entry, 0, len(ids))
		for _, id := range ids {
			re := entries[id]
			list = append(list, Entry{
				Reading:  reading,
				Surface:  lookupString(strtab, re.SurfaceOffset),
				LeftID:   re.LeftID,
				RightID:  re.RightID,
				WordCost: re.WordCost,
				Role:     re.Role,
			})
		}
		d.trie.Insert(patriciaPrefix(reading), list)
	}
	return d, nil
}

// encode serializes the dictionary to an LXDX image.
func (d *Dictionary) encode() ([]byte, error) {
	var strtab bytes.Buffer
	offsets := map[string]uint32{}
	internString := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint32(strtab.Len())
		strtab.WriteString(s)
		strtab.WriteByte(0)
		offsets[s] = off
		return off
	}

	var rawEntries []rawEntry
	readingIDs := map[string][]uint32{}
	d.visitInOrder(func(reading string, entries []Entry) {
		ids := make([]uint32, 0, len(entries))
		for _, e := range entries {
			id := uint32(len(rawEntries))
			rawEntries = append(rawEntries, rawEntry{
				SurfaceOffset: internString(e.Surface),
				LeftID:        e.LeftID,
				RightID:       e.RightID,
				WordCost:      e.WordCost,
				Role:          e.Role,
			})
			ids = append(ids, id)
		}
		readingIDs[reading] = ids
	})

	trieBytes := encodeTrie(readingIDs)
	entriesBytes := encodeEntries(rawEntries, strtab.Bytes())

	var out bytes.Buffer
	out.WriteString(Magic)
	out.WriteByte(Version)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(trieBytes)))
	out.Write(lenBuf[:])
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(entriesBytes)))
	out.Write(lenBuf[:])
	out.Write(trieBytes)
	out.Write(entriesBytes)
	return out.Bytes(), nil
}

// visitInOrder walks every reading in the trie, in ascending key order.
func (d *Dictionary) visitInOrder(fn func(reading string, entries []Entry)) {
	type kv struct {
		reading string
		entries []Entry
	}
	var all []kv
	_ = d.trie.Visit(func(p []byte, item interface{}) error {
		all = append(all, kv{reading: string(p), entries: item.([]Entry)})
		return nil
	})
	for _, e := range all {
		fn(e.reading, e.entries)
	}
}
