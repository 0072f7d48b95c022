// Package connection implements the POS connection-cost matrix (spec §3,
// §4.2, §6): an immutable rows×cols matrix of i16 transition costs indexed by
// (left_id, right_id), with a sideband POS-role per id, and a unigram
// fallback (all transitions cost 0) when no matrix file is available.
package connection

import (
	"bytes"
	"encoding/binary"
	"os"

	"lexime/dict"
	"lexime/lexerr"
)

// Magic and Version identify the LXCX on-disk format:
//
//	[4B magic "LXCX"][1B version][rows:u32][cols:u32][i16 row-major matrix][role sideband]
const (
	Magic   = "LXCX"
	Version = 1
)

// Matrix is an immutable, concurrency-safe left_id x right_id -> cost table.
type Matrix struct {
	rows, cols int
	costs      []int16 // row-major, len == rows*cols
	roles      []dict.Role
	fallback   bool // true => unigram fallback (no matrix loaded)
}

// Unigram returns a zero-cost fallback matrix, used when no LXCX file is
// available (spec §4.2: "If the matrix is absent, a unigram fallback is used:
// all transitions cost 0").
func Unigram() *Matrix {
	return &Matrix{fallback: true}
}

// New builds a matrix of the given dimensions, costs all zero, roles all
// ContentWord, for callers assembling one programmatically (tests).
func New(rows, cols int) *Matrix {
	return &Matrix{
		rows:  rows,
		cols:  cols,
		costs: make([]int16, rows*cols),
		roles: make([]dict.Role, maxInt(rows, cols)),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Set assigns the transition cost for (leftID, rightID). Not concurrency
// safe; call only while building.
func (m *Matrix) Set(leftID, rightID int, cost int16) {
	m.costs[leftID*m.cols+rightID] = cost
}

// SetRole assigns the POS role for a connection id.
func (m *Matrix) SetRole(id int, role dict.Role) {
	for len(m.roles) <= id {
		m.roles = append(m.roles, dict.ContentWord)
	}
	m.roles[id] = role
}

// Cost returns the transition cost between leftID and rightID.
func (m *Matrix) Cost(leftID, rightID uint16) int16 {
	if m.fallback {
		return 0
	}
	li, ri := int(leftID), int(rightID)
	if li < 0 || li >= m.rows || ri < 0 || ri >= m.cols {
		return 0
	}
	return m.costs[li*m.cols+ri]
}

// Role returns the POS role sideband for an id.
func (m *Matrix) Role(id uint16) dict.Role {
	i := int(id)
	if i < 0 || i >= len(m.roles) {
		return dict.ContentWord
	}
	return m.roles[i]
}

// IsFallback reports whether this matrix is the zero-cost unigram fallback.
func (m *Matrix) IsFallback() bool { return m.fallback }

// Save writes the matrix to path in LXCX format.
func (m *Matrix) Save(path string) error {
	var out bytes.Buffer
	out.WriteString(Magic)
	out.WriteByte(Version)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(m.rows))
	out.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(m.cols))
	out.Write(u32[:])
	for _, c := range m.costs {
		binary.LittleEndian.PutUint16(u32[:2], uint16(c))
		out.Write(u32[:2])
	}
	binary.LittleEndian.PutUint32(u32[:], uint32(len(m.roles)))
	out.Write(u32[:])
	for _, r := range m.roles {
		out.WriteByte(byte(r))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "connection.Save.write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return lexerr.Wrap(lexerr.FileIo, "connection.Save.rename", path, err)
	}
	return nil
}

// Load reads an LXCX file. If path does not exist, Load returns the unigram
// fallback matrix and a nil error (spec §7: engine continues with reduced
// functionality rather than failing open).
func Load(path string) (*Matrix, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unigram(), nil
		}
		return nil, lexerr.Wrap(lexerr.FileIo, "connection.Load.read", path, err)
	}
	return FromBytes(b)
}

// FromBytes decodes an in-memory LXCX image.
func FromBytes(b []byte) (*Matrix, error) {
	if len(b) < 4+1+4+4 {
		return nil, lexerr.Wrap(lexerr.Deserialize, "connection.FromBytes", "", errTruncated)
	}
	if string(b[0:4]) != Magic {
		return nil, lexerr.Wrap(lexerr.InvalidHeader, "connection.FromBytes", "", errBadMagic)
	}
	if b[4] != Version {
		return nil, lexerr.Wrap(lexerr.UnsupportedVersion, "connection.FromBytes", "", errBadVersion)
	}
	rows := int(binary.LittleEndian.Uint32(b[5:9]))
	cols := int(binary.LittleEndian.Uint32(b[9:13]))
	off := 13
	need := rows * cols * 2
	if off+need > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "connection.FromBytes.matrix", "", errTruncated)
	}
	costs := make([]int16, rows*cols)
	for i := 0; i < rows*cols; i++ {
		costs[i] = int16(binary.LittleEndian.Uint16(b[off : off+2]))
		off += 2
	}
	if off+4 > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "connection.FromBytes.roles_len", "", errTruncated)
	}
	roleCount := int(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	if off+roleCount > len(b) {
		return nil, lexerr.Wrap(lexerr.Deserialize, "connection.FromBytes.roles", "", errTruncated)
	}
	roles := make([]dict.Role, roleCount)
	for i := 0; i < roleCount; i++ {
		roles[i] = dict.Role(b[off+i])
	}
	return &Matrix{rows: rows, cols: cols, costs: costs, roles: roles}, nil
}
