package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultChunkSize is the number of base64 input bytes read per step of the
// streaming decoder.
const DefaultChunkSize = 2 << 20

var errDataAfterPadding = errors.New("data after base64 padding")

func encodings(strict bool) (padded, raw *base64.Encoding) {
	if strict {
		return base64.StdEncoding.Strict(), base64.RawStdEncoding.Strict()
	}
	return base64.StdEncoding, base64.RawStdEncoding
}

// chunkDecoder decodes base64 text fed in arbitrary windows. Each step
// decodes only the largest multiple-of-4 prefix of carry+input and carries
// the rest forward. done is set once a padded quantum has been decoded, after
// which any further base64 text is corrupt.
type chunkDecoder struct {
	carry  []byte
	done   bool
	out    []byte
	padded *base64.Encoding
	raw    *base64.Encoding
}

func newChunkDecoder(strict bool) *chunkDecoder {
	padded, raw := encodings(strict)
	return &chunkDecoder{padded: padded, raw: raw}
}

// next advances the machine by one input window. The returned slice is only
// valid until the following call.
func (d *chunkDecoder) next(in []byte) ([]byte, error) {
	for _, c := range in {
		if c == '\r' || c == '\n' {
			continue
		}
		d.carry = append(d.carry, c)
	}

	n := len(d.carry) - len(d.carry)%4
	if n == 0 {
		return nil, nil
	}
	if d.done {
		return nil, errDataAfterPadding
	}

	need := d.padded.DecodedLen(n)
	if cap(d.out) < need {
		d.out = make([]byte, need)
	}
	m, err := d.padded.Decode(d.out[:need], d.carry[:n])
	if err != nil {
		return nil, err
	}
	if d.carry[n-1] == '=' {
		d.done = true
	}

	rest := copy(d.carry, d.carry[n:])
	d.carry = d.carry[:rest]
	return d.out[:m], nil
}

// finish decodes the unpadded remainder left after the last window.
func (d *chunkDecoder) finish() ([]byte, error) {
	if len(d.carry) == 0 {
		return nil, nil
	}
	if d.done {
		return nil, errDataAfterPadding
	}
	out, err := d.raw.DecodeString(string(d.carry))
	d.carry = d.carry[:0]
	return out, err
}

// decodeStream copies the base64 text in r to w in chunkSize windows and
// returns the number of decoded bytes written. ctx is checked once per
// window.
func decodeStream(ctx context.Context, w io.Writer, r io.Reader, chunkSize int, strict bool) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	dec := newChunkDecoder(strict)
	in := make([]byte, chunkSize)
	var written int64

	write := func(p []byte) error {
		if len(p) == 0 {
			return nil
		}
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := io.ReadFull(r, in)
		if n > 0 {
			out, err := dec.next(in[:n])
			if err != nil {
				return written, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			if err := write(out); err != nil {
				return written, err
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return written, fmt.Errorf("%w: read payload: %v", ErrStorageUnavailable, rerr)
		}
	}

	out, err := dec.finish()
	if err != nil {
		return written, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return written, write(out)
}

// DecodePayload decodes a data URI payload in memory with the rules Persist
// applies. Errors wrap ErrInvalidPayload.
func DecodePayload(payload string, strict bool) ([]byte, error) {
	return decodeAll(payload, strict)
}

// decodeAll decodes payload in one pass with the same rules as the chunked
// decoder: line breaks are ignored and a trailing unpadded group is accepted.
func decodeAll(payload string, strict bool) ([]byte, error) {
	padded, raw := encodings(strict)

	if strings.ContainsAny(payload, "\r\n") {
		payload = strings.NewReplacer("\r", "", "\n", "").Replace(payload)
	}

	n := len(payload) - len(payload)%4
	data, err := padded.DecodeString(payload[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if n == len(payload) {
		return data, nil
	}

	if n > 0 && payload[n-1] == '=' {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, errDataAfterPadding)
	}
	tail, err := raw.DecodeString(payload[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return append(data, tail...), nil
}
