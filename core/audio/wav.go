package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	wavHeaderSize  = 44
	wavFormatPCM   = 1
	ContentTypeWAV = "audio/wav"
)

var ErrInvalidWAV = errors.New("invalid wav data")

// EncodeWAV wraps raw 16-bit PCM in a WAV container.
func EncodeWAV(pcm []byte, info EncodingInfo) []byte {
	channels := info.channels()
	bytesPerSample := info.Format.ByteSize()
	if bytesPerSample <= 0 {
		bytesPerSample = 2
	}

	buf := &bytes.Buffer{}
	buf.Grow(wavHeaderSize + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(info.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(info.SampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// DecodeWAV extracts the PCM samples of a 16-bit PCM WAV file.
//
// A data chunk that claims more bytes than are present (as streamed WAVs
// do) is truncated to what is available.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		encoding  EncodingInfo
		sawFormat bool
	)
	for offset := 12; offset+8 <= len(data); {
		id := string(data[offset : offset+4])
		body := offset + 8
		// Chunk sizes are untrusted and may not fit an int on 32-bit targets.
		size := uint64(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		available := uint64(len(data) - body)

		switch id {
		case "fmt ":
			if size < 16 || available < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			bitsPerSample := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != wavFormatPCM || bitsPerSample != 16 {
				return nil, fmt.Errorf("%w: unsupported format %d with %d bits", ErrInvalidWAV, format, bitsPerSample)
			}
			encoding = EncodingInfo{
				Channels:   int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate: int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				Format:     EncodingLinear16,
			}
			sawFormat = true

		case "data":
			if !sawFormat {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalidWAV)
			}
			n := min(size, available)
			pcm := make([]byte, n)
			copy(pcm, data[body:body+int(n)])
			return &Clip{PCM: pcm, Encoding: encoding}, nil
		}

		padded := size + size%2
		if padded > available {
			break
		}
		offset = body + int(padded)
	}

	return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
}
