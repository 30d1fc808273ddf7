package backup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFSTarget_RoundTrip(t *testing.T) {
	target, err := NewFSTarget(filepath.Join(t.TempDir(), "backups"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, target.Put(ctx, "snap-a.fsnap", bytes.NewReader([]byte("payload"))))

	var buf bytes.Buffer
	require.NoError(t, target.Get(ctx, "snap-a.fsnap", &buf))
	require.Equal(t, "payload", buf.String())

	names, err := target.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"snap-a.fsnap"}, names)
}

func TestFSTarget_Permissions(t *testing.T) {
	root := filepath.Join(t.TempDir(), "backups")
	target, err := NewFSTarget(root)
	require.NoError(t, err)

	require.NoError(t, target.Put(context.Background(), "snap-a.fsnap",
		bytes.NewReader([]byte("secret archive"))))

	info, err := os.Stat(filepath.Join(root, "snap-a.fsnap"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFSTarget_GetNotFound(t *testing.T) {
	target, err := NewFSTarget(t.TempDir())
	require.NoError(t, err)

	err = target.Get(context.Background(), "snap-missing.fsnap", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryTarget_NotFound(t *testing.T) {
	err := NewMemoryTarget().Get(context.Background(), "nope", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestCompress_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("compressible json "), 1000)

	packed, err := compress(data)
	require.NoError(t, err)
	require.Less(t, len(packed), len(data))

	unpacked, err := decompress(packed)
	require.NoError(t, err)
	require.Equal(t, data, unpacked)
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := decompress([]byte("definitely not zstd"))
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestScryptEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewScryptEncryptor("passphrase")
	require.NoError(t, err)

	var sealed bytes.Buffer
	require.NoError(t, enc.Encrypt(&sealed, bytes.NewReader([]byte("archive bytes"))))
	require.NotContains(t, sealed.String(), "archive bytes")

	var opened bytes.Buffer
	require.NoError(t, enc.Decrypt(&opened, bytes.NewReader(sealed.Bytes())))
	require.Equal(t, "archive bytes", opened.String())
}

func TestScryptEncryptor_WrongPassphrase(t *testing.T) {
	enc, err := NewScryptEncryptor("right")
	require.NoError(t, err)

	var sealed bytes.Buffer
	require.NoError(t, enc.Encrypt(&sealed, bytes.NewReader([]byte("archive bytes"))))

	wrong, err := NewScryptEncryptor("wrong")
	require.NoError(t, err)

	err = wrong.Decrypt(&bytes.Buffer{}, bytes.NewReader(sealed.Bytes()))
	require.Error(t, err)
}
