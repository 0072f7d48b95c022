package history

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"lexime/lexerr"
)

// bigramEvent mirrors BigramKey for msgpack encoding inside a walEvent.
type bigramEvent struct {
	PrevSurface string
	NextReading string
	NextSurface string
}

// walEvent is the payload of one WAL frame: everything needed to replay a
// single Record call.
type walEvent struct {
	Reading string
	Surface string
	Bigrams []bigramEvent
	Now     uint64
}

// walWriter appends frames to the sibling WAL file, each
// [length:u32][crc32:u32][payload] (spec §6).
type walWriter struct {
	path string
	f    *os.File
}

func openWAL(path string) (*walWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, lexerr.Wrap(lexerr.FileIo, "history.openWAL", path, err)
	}
	return &walWriter{path: path, f: f}, nil
}

func (w *walWriter) append(ev walEvent) error {
	payload, err := msgpack.Marshal(ev)
	if err != nil {
		return lexerr.Wrap(lexerr.Deserialize, "history.walWriter.append.marshal", w.path, err)
	}
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(payload))
	if _, err := w.f.Write(header[:]); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.append.header", w.path, err)
	}
	if _, err := w.f.Write(payload); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.append.payload", w.path, err)
	}
	return w.f.Sync()
}

// size returns the current WAL file length. Callers must already exclude
// concurrent writers (e.g. hold Store's reader lock, since appends happen
// under the writer lock).
func (w *walWriter) size() (int64, error) {
	info, err := w.f.Stat()
	if err != nil {
		return 0, lexerr.Wrap(lexerr.FileIo, "history.walWriter.size", w.path, err)
	}
	return info.Size(), nil
}

// compactAfter drops every byte up to cutoff, keeping any frame appended
// after a checkpoint snapshot was taken (spec §4.6: checkpoint write and
// WAL truncate are not required to be one atomic step, but no frame may be
// silently dropped).
func (w *walWriter) compactAfter(cutoff int64) error {
	if _, err := w.f.Seek(cutoff, io.SeekStart); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.compactAfter.seek", w.path, err)
	}
	tail, err := io.ReadAll(w.f)
	if err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.compactAfter.read", w.path, err)
	}
	if err := w.f.Truncate(0); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.compactAfter.truncate", w.path, err)
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.walWriter.compactAfter.rewind", w.path, err)
	}
	if len(tail) > 0 {
		if _, err := w.f.Write(tail); err != nil {
			return lexerr.Wrap(lexerr.FileIo, "history.walWriter.compactAfter.write", w.path, err)
		}
	}
	_, err = w.f.Seek(0, io.SeekEnd)
	return err
}

func (w *walWriter) close() error {
	return w.f.Close()
}

// replayWAL reads every frame in path in order, discarding (and stopping
// at) the first frame whose CRC mismatches (spec §4.6, §7).
func replayWAL(path string) ([]walEvent, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lexerr.Wrap(lexerr.FileIo, "history.replayWAL.read", path, err)
	}

	var events []walEvent
	off := 0
	for off+8 <= len(b) {
		length := int(binary.LittleEndian.Uint32(b[off : off+4]))
		wantCRC := binary.LittleEndian.Uint32(b[off+4 : off+8])
		payloadStart := off + 8
		if payloadStart+length > len(b) {
			break // truncated frame, stop replay here
		}
		payload := b[payloadStart : payloadStart+length]
		if crc32.ChecksumIEEE(payload) != wantCRC {
			break // first bad frame: truncate replay here
		}
		var ev walEvent
		if err := msgpack.Unmarshal(payload, &ev); err != nil {
			break
		}
		events = append(events, ev)
		off = payloadStart + length
	}
	return events, nil
}
