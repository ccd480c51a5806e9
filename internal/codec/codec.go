// Package codec translates domain aggregates to and from column maps. It
// is the only place that knows the table schemas; the persistence facade
// moves rows around without looking inside them.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// timeFormat keeps time columns lossless across a round-trip.
const timeFormat = time.RFC3339Nano

// compressedPrefix marks a game-state payload as zstd-compressed. Encoded
// payloads are base64 so they stay valid text in the store.
const compressedPrefix = "zstd:"

// Codec encodes aggregates for the fixed tables. Compression applies only
// to the save-game state payload.
type Codec struct {
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// New builds a Codec. The zstd coders are shared and safe for concurrent
// EncodeAll/DecodeAll use.
func New(compress bool) (*Codec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return &Codec{compress: compress, enc: enc, dec: dec}, nil
}

func encodeTime(t time.Time) types.Value {
	return types.Text(t.UTC().Format(timeFormat))
}

func decodeTime(v types.Value) (time.Time, error) {
	s := v.AsText("")
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad time %q: %v", types.ErrInvalidData, s, err)
	}
	return t.UTC(), nil
}

func encodeJSON(v any) (types.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return types.Null(), fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return types.Text(string(b)), nil
}

func decodeJSON(v types.Value, out any) error {
	s := v.AsText("")
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

func checkText(field, s string) error {
	if len(s) > types.MaxTextSize {
		return fmt.Errorf("%w: %s is %d bytes, cap %d",
			types.ErrValueTooLarge, field, len(s), types.MaxTextSize)
	}
	return nil
}

// encodeState compresses the save-game state when compression is on.
func (c *Codec) encodeState(state string) string {
	if !c.compress || state == "" {
		return state
	}
	packed := c.enc.EncodeAll([]byte(state), nil)
	return compressedPrefix + base64.StdEncoding.EncodeToString(packed)
}

// decodeState reverses encodeState. Uncompressed payloads pass through so
// data written before compression was enabled still loads.
func (c *Codec) decodeState(state string) (string, error) {
	if !strings.HasPrefix(state, compressedPrefix) {
		return state, nil
	}
	packed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(state, compressedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: bad compressed payload: %v", types.ErrInvalidData, err)
	}
	raw, err := c.dec.DecodeAll(packed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: decompressing game state: %v", types.ErrInvalidData, err)
	}
	return string(raw), nil
}
