package backup

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// maxDecompressedSize caps snapshot expansion at 1GB. A snapshot is loaded
// fully into memory on restore, and the cap keeps a corrupted or hostile
// archive from exhausting it.
const maxDecompressedSize = 1 << 30

var (
	// zstd encoder and decoder are thread-safe and reusable
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdOnce    sync.Once
	zstdErr     error
)

func initZstd() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
		if zstdErr != nil {
			zstdEncoder.Close()
			zstdEncoder = nil
		}
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// compress zstd-compresses a serialized snapshot.
func compress(data []byte) ([]byte, error) {
	encoder, _, err := initZstd()
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(data, nil), nil
}

// decompress reverses compress, enforcing maxDecompressedSize.
func decompress(data []byte) ([]byte, error) {
	_, decoder, err := initZstd()
	if err != nil {
		return nil, err
	}
	result, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, ErrCorruptSnapshot
	}
	if len(result) > maxDecompressedSize {
		return nil, ErrCorruptSnapshot
	}
	return result, nil
}
