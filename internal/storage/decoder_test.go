package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestDecodeStream_MatchesDecodeAll(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{0, 1, 2, 3, 4, 5, 63, 64, 65, 1000, 4097} {
		data := make([]byte, size)
		rng.Read(data)

		for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
			payload := enc.EncodeToString(data)

			want, err := decodeAll(payload, true)
			if err != nil {
				t.Fatalf("decodeAll(size=%d) error: %v", size, err)
			}
			if !bytes.Equal(want, data) {
				t.Fatalf("decodeAll(size=%d) mismatch", size)
			}

			for _, chunk := range []int{1, 2, 3, 4, 5, 7, 8, 13, 64, 1 << 20} {
				var out bytes.Buffer
				n, err := decodeStream(context.Background(), &out, strings.NewReader(payload), chunk, true)
				if err != nil {
					t.Fatalf("decodeStream(size=%d, chunk=%d) error: %v", size, chunk, err)
				}
				if n != int64(size) {
					t.Errorf("decodeStream(size=%d, chunk=%d) wrote %d bytes", size, chunk, n)
				}
				if !bytes.Equal(out.Bytes(), data) {
					t.Errorf("decodeStream(size=%d, chunk=%d) output differs", size, chunk)
				}
			}
		}
	}
}

func TestDecodeStream_IgnoresLineBreaks(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	encoded := base64.StdEncoding.EncodeToString(data)

	var wrapped strings.Builder
	for i := 0; i < len(encoded); i += 7 {
		end := min(i+7, len(encoded))
		wrapped.WriteString(encoded[i:end])
		wrapped.WriteString("\r\n")
	}

	all, err := decodeAll(wrapped.String(), false)
	if err != nil || !bytes.Equal(all, data) {
		t.Fatalf("decodeAll = %q, %v", all, err)
	}

	for _, chunk := range []int{1, 3, 5, 9} {
		var out bytes.Buffer
		if _, err := decodeStream(context.Background(), &out, strings.NewReader(wrapped.String()), chunk, false); err != nil {
			t.Fatalf("chunk %d: %v", chunk, err)
		}
		if !bytes.Equal(out.Bytes(), data) {
			t.Errorf("chunk %d: got %q", chunk, out.Bytes())
		}
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"bad character":       "QUJD!UJD",
		"data after padding":  "QQ==QUJD",
		"padded then tail":    "QQ==QQ",
		"single trailing":     "QUJDR",
		"padding in tail":     "QUJDQQ=",
		"non-zero pad bits":   "QR==",
		"bad char late chunk": strings.Repeat("QUJD", 10) + "Q*JD",
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeAll(payload, true); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("decodeAll err = %v, want ErrInvalidPayload", err)
			}
			for _, chunk := range []int{1, 4, 6, 1024} {
				var out bytes.Buffer
				_, err := decodeStream(context.Background(), &out, strings.NewReader(payload), chunk, true)
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("decodeStream(chunk=%d) err = %v, want ErrInvalidPayload", chunk, err)
				}
			}
		})
	}
}

func TestChunkDecoder_CarriesRemainder(t *testing.T) {
	dec := newChunkDecoder(true)

	out, err := dec.next([]byte("QUJ"))
	if err != nil || len(out) != 0 {
		t.Fatalf("first step = %q, %v", out, err)
	}
	if string(dec.carry) != "QUJ" {
		t.Fatalf("carry = %q", dec.carry)
	}

	out, err = dec.next([]byte("DRE"))
	if err != nil || string(out) != "ABC" {
		t.Fatalf("second step = %q, %v", out, err)
	}
	if string(dec.carry) != "RE" {
		t.Fatalf("carry = %q", dec.carry)
	}

	out, err = dec.next([]byte("U="))
	if err != nil || string(out) != "DE" || !dec.done {
		t.Fatalf("third step = %q, %v, done=%v", out, err, dec.done)
	}

	out, err = dec.finish()
	if err != nil || len(out) != 0 {
		t.Fatalf("finish = %q, %v", out, err)
	}
}

func TestDecodeStream_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := decodeStream(ctx, &out, strings.NewReader("QUJD"), 4, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if Code(err) != CodeCanceled {
		t.Errorf("Code = %s", Code(err))
	}
}
