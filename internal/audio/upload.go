package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUploadTooLarge is returned when an upload exceeds the configured limit
var ErrUploadTooLarge = errors.New("audio upload too large")

const fallbackMimeType = "application/octet-stream"

// Upload is a fully buffered audio attachment
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Size returns the number of audio bytes
func (u *Upload) Size() int {
	if u == nil {
		return 0
	}
	return len(u.Data)
}

// ReadUpload consumes r exactly once, up to limit bytes, and sniffs its format.
// declaredType is the client supplied Content-Type and is only used when the
// bytes are not recognized.
func ReadUpload(r io.Reader, filename, declaredType string, limit int64) (*Upload, error) {
	if r == nil {
		return nil, fmt.Errorf("nil audio reader")
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, limit)
	}

	return &Upload{
		Filename: filename,
		MimeType: DetectMimeType(data, declaredType),
		Data:     data,
	}, nil
}

// DetectMimeType identifies common recording containers from their magic bytes
func DetectMimeType(data []byte, declaredType string) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "audio/wav"
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return "audio/mp4"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return "audio/ogg"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return "audio/flac"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "audio/webm"
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xF6 == 0xF0:
		// ADTS frame: sync word with layer bits 00
		return "audio/aac"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	}

	declared := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if strings.HasPrefix(declared, "audio/") || strings.HasPrefix(declared, "video/") {
		return declared
	}
	return fallbackMimeType
}
