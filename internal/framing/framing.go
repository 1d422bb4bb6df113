// Package framing reads and writes length-delimited messages: an unsigned
// varint byte count followed by that many bytes of encoded protobuf.
//
// Packets are the protocol 2 variant of a frame. The counted bytes start
// with a varint compilation id and the protobuf payload follows it.
package framing

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"google.golang.org/protobuf/encoding/protowire"
)

// DefaultMaxMessageSize bounds a single frame unless overridden.
const DefaultMaxMessageSize = 64 * 1024 * 1024

var (
	ErrMessageTooLarge   = errors.New("message exceeds maximum allowed size")
	ErrInvalidUvarint    = errors.New("malformed uvarint length prefix")
	ErrIncompleteMessage = errors.New("incomplete message (less data than specified by length prefix)")
	ErrInvalidPacketID   = errors.New("malformed compilation id in packet")
)

// Writer writes framed messages. It is safe for concurrent use; each frame
// is written atomically with respect to other WriteMessage calls.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	maxSize int
	log     *slog.Logger
}

// NewWriter creates a Writer. A maxSize of zero selects DefaultMaxMessageSize.
func NewWriter(w io.Writer, maxSize int, log *slog.Logger) *Writer {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Writer{w: w, maxSize: maxSize, log: log.With("component", "framing")}
}

// WriteMessage writes the length prefix and payload as a single write.
func (fw *Writer) WriteMessage(payload []byte) error {
	return fw.write(nil, payload)
}

// WritePacket writes a frame whose counted bytes are the varint
// compilationID followed by payload.
func (fw *Writer) WritePacket(compilationID uint32, payload []byte) error {
	return fw.write(protowire.AppendVarint(nil, uint64(compilationID)), payload)
}

func (fw *Writer) write(head, payload []byte) error {
	size := len(head) + len(payload)
	if size > fw.maxSize {
		return fmt.Errorf("%w: message size %d, max %d", ErrMessageTooLarge, size, fw.maxSize)
	}

	frame := make([]byte, 0, binary.MaxVarintLen32+size)
	frame = protowire.AppendVarint(frame, uint64(size))
	frame = append(frame, head...)
	frame = append(frame, payload...)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	fw.log.Debug("Wrote frame", "bytes", size)

	return nil
}

// Reader reads framed messages. It is not safe for concurrent use.
type Reader struct {
	r       *bufio.Reader
	maxSize int
	log     *slog.Logger
}

// NewReader creates a Reader. A maxSize of zero selects DefaultMaxMessageSize.
func NewReader(r io.Reader, maxSize int, log *slog.Logger) *Reader {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &Reader{r: br, maxSize: maxSize, log: log.With("component", "framing")}
}

// ReadMessage reads one frame and returns its payload. It returns io.EOF
// only when the stream ends cleanly between frames. A zero-length frame
// yields an empty, non-nil payload.
func (fr *Reader) ReadMessage() ([]byte, error) {
	size, err := binary.ReadUvarint(fr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated length prefix", ErrIncompleteMessage)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidUvarint, err)
	}

	if size > uint64(fr.maxSize) {
		return nil, fmt.Errorf("%w: message claims size %d, max %d", ErrMessageTooLarge, size, fr.maxSize)
	}

	payload := make([]byte, size)

	n, err := io.ReadFull(fr.r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrIncompleteMessage, size, n)
		}

		return nil, fmt.Errorf("read payload: %w", err)
	}

	fr.log.Debug("Read frame", "bytes", size)

	return payload, nil
}

// ReadPacket reads one frame and splits it into the leading compilation id
// and the protobuf payload that follows.
func (fr *Reader) ReadPacket() (uint32, []byte, error) {
	frame, err := fr.ReadMessage()
	if err != nil {
		return 0, nil, err
	}

	id, n := protowire.ConsumeVarint(frame)
	if n < 0 {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidPacketID, protowire.ParseError(n))
	}

	if id > math.MaxUint32 {
		return 0, nil, fmt.Errorf("%w: %d overflows uint32", ErrInvalidPacketID, id)
	}

	return uint32(id), frame[n:], nil
}
