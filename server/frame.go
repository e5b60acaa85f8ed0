package server

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameSize caps a single command frame. Machine descriptions are small;
// anything above this indicates a broken or hostile peer.
const maxFrameSize = 4 << 20

// Command is the wire envelope of one debug command.
type Command struct {
	Kind string          `json:"command"`
	Data json.RawMessage `json:"data"`
}

// readFrame reads one length-prefixed, deflate-compressed command from the
// stream: a 4-byte big-endian payload length followed by the compressed
// JSON envelope. io.EOF is returned unchanged on a clean end of stream.
func readFrame(r io.Reader) (*Command, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading frame header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > maxFrameSize {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}

	compressed := make([]byte, length)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}

	inflater := flate.NewReader(bytes.NewReader(compressed))
	defer inflater.Close()
	payload, err := io.ReadAll(io.LimitReader(inflater, maxFrameSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing frame: %w", err)
	}
	if len(payload) > maxFrameSize {
		return nil, fmt.Errorf("decompressed frame exceeds %d bytes", maxFrameSize)
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("decoding command envelope: %w", err)
	}
	return &cmd, nil
}

// writeFrame writes one command in the wire format. Used by the debugged
// process side and by tests.
func writeFrame(w io.Writer, cmd *Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command envelope: %w", err)
	}

	var compressed bytes.Buffer
	deflater, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		return err
	}
	if _, err := deflater.Write(payload); err != nil {
		return fmt.Errorf("compressing frame: %w", err)
	}
	if err := deflater.Close(); err != nil {
		return fmt.Errorf("compressing frame: %w", err)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(compressed.Len()))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(compressed.Bytes()); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}
