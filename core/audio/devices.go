package audio

import (
	"context"
	"encoding/base64"
)

// CaptureDevice is a microphone that can be held by one capture episode at a
// time.
type CaptureDevice interface {
	EncodingInfo() EncodingInfo
	// Open acquires the device and starts delivering chunks to onChunk. The
	// chunk slice may be reused by the device after onChunk returns.
	Open(ctx context.Context, onChunk func(chunk []byte)) error
	// Close stops delivery and releases the device.
	Close() error
}

// ClipPlayer plays decoded audio clips.
type ClipPlayer interface {
	// Play blocks until the clip has been played out or ctx is done, in which
	// case output stops immediately and ctx.Err() is returned.
	Play(ctx context.Context, clip *Clip) error
}

// Payload is a finalized recording ready to be sent for transcription.
type Payload struct {
	Data        []byte
	ContentType string
	Encoding    EncodingInfo
}

func (p Payload) IsEmpty() bool { return len(p.Data) == 0 }

func (p Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Clip is raw PCM audio ready for playback.
type Clip struct {
	PCM      []byte
	Encoding EncodingInfo
}
