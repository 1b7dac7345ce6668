package catalog

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/abduss/filecrypt/internal/category"
	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/cryptox"
	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSongRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{})
	ctx := context.Background()
	data := []byte("0123456789")

	info, err := svc.Upload(ctx, Upload{Filename: "song.mp3", ContentType: "audio/mpeg", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "song", info.OriginalName)
	assert.Equal(t, "ad3", info.StoredExtension)
	assert.Equal(t, "mp3", info.RealExtension)
	assert.Equal(t, "audio", info.Category)
	assert.Equal(t, int64(10), info.Size)
	assert.Equal(t, "10.00 B", info.SizeFormatted)

	id, err := ParseID(info.ID)
	require.NoError(t, err)

	p, err := svc.Preview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, PreviewAudio, p.Type)
	assert.Equal(t, "data:audio/mpeg;base64,"+base64.StdEncoding.EncodeToString(data), p.Data)

	d, err := svc.Download(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", d.Filename)
	assert.Equal(t, data, d.Data)
	assert.Equal(t, "audio/mpeg", d.ContentType)
}

func TestPreviewShapes(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{})
	ctx := context.Background()

	upload := func(name string, data []byte) uuid.UUID {
		t.Helper()
		info, err := svc.Upload(ctx, Upload{Filename: name, Data: data})
		require.NoError(t, err)
		id, err := ParseID(info.ID)
		require.NoError(t, err)
		return id
	}

	t.Run("json is compacted", func(t *testing.T) {
		p, err := svc.Preview(ctx, upload("data.json", []byte("{ \"a\" : 1 }")))
		require.NoError(t, err)
		assert.Equal(t, PreviewJSON, p.Type)
		raw, ok := p.Data.(json.RawMessage)
		require.True(t, ok)
		assert.Equal(t, `{"a":1}`, string(raw))
	})

	t.Run("malformed json falls back to text", func(t *testing.T) {
		p, err := svc.Preview(ctx, upload("broken.json", []byte("{not json")))
		require.NoError(t, err)
		assert.Equal(t, PreviewText, p.Type)
		assert.Equal(t, "{not json", p.Data)
		assert.NotEmpty(t, p.Notice)
	})

	t.Run("image is a data url", func(t *testing.T) {
		p, err := svc.Preview(ctx, upload("photo.png", []byte("not really a png")))
		require.NoError(t, err)
		assert.Equal(t, PreviewImage, p.Type)
		assert.Contains(t, p.Data, "data:image/png;base64,")
	})

	t.Run("text", func(t *testing.T) {
		p, err := svc.Preview(ctx, upload("notes.txt", []byte("hello")))
		require.NoError(t, err)
		assert.Equal(t, PreviewText, p.Type)
		assert.Equal(t, "hello", p.Data)
	})

	t.Run("binary content yields a notice", func(t *testing.T) {
		p, err := svc.Preview(ctx, upload("blob.bin", []byte{0xff, 0xfe, 0x00}))
		require.NoError(t, err)
		assert.Equal(t, PreviewText, p.Type)
		assert.Contains(t, p.Notice, "3 bytes")
	})
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{
		MaxFileSize:       8,
		AllowedExtensions: []string{"txt", "mp3"},
	})
	ctx := context.Background()

	_, err := svc.Upload(ctx, Upload{Filename: "../", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = svc.Upload(ctx, Upload{Filename: "big.txt", Data: make([]byte, 9)})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = svc.Upload(ctx, Upload{Filename: "run.exe", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = svc.Upload(ctx, Upload{Filename: "ok.txt", Data: make([]byte, 8)})
	assert.NoError(t, err)
}

func TestListFiltersAndOrders(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{})
	ctx := context.Background()

	for _, name := range []string{"a.mp3", "b.png", "c.mp3"} {
		_, err := svc.Upload(ctx, Upload{Filename: name, Data: []byte(name)})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, ListQuery{Category: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, []string{"a", "b", "c"}, names(all.Files))

	audio, err := svc.List(ctx, ListQuery{Category: "audio"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names(audio.Files))

	desc, err := svc.List(ctx, ListQuery{Order: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(desc.Files))

	_, err = svc.List(ctx, ListQuery{Category: "video"})
	assert.ErrorIs(t, err, category.ErrUnknownCategory)

	_, err = svc.List(ctx, ListQuery{Order: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestDeleteThenReadIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{})
	ctx := context.Background()

	info, err := svc.Upload(ctx, Upload{Filename: "x.txt", Data: []byte("x")})
	require.NoError(t, err)
	id, err := ParseID(info.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), file.ErrFileNotFound)

	_, err = svc.Preview(ctx, id)
	assert.ErrorIs(t, err, file.ErrFileNotFound)
	_, err = svc.Download(ctx, id)
	assert.ErrorIs(t, err, file.ErrFileNotFound)
}

func TestConcurrentDeleteAndPreview(t *testing.T) {
	svc, _ := newTestService(t, config.UploadConfig{})
	ctx := context.Background()

	info, err := svc.Upload(ctx, Upload{Filename: "race.txt", Data: []byte("payload")})
	require.NoError(t, err)
	id, err := ParseID(info.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Preview(ctx, id)
			if err == nil && p.Data != "payload" {
				t.Errorf("unexpected preview %v", p.Data)
			}
			errs <- err
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Delete(ctx, id)
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, file.ErrFileNotFound)
		}
	}
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]struct {
		base string
		ext  string
	}{
		"song.mp3":             {"song", "mp3"},
		"../../etc/passwd":     {"passwd", ""},
		`C:\Users\me\cv.PDF`:   {"cv", "pdf"},
		"my holiday photo.jpg": {"my_holiday_photo", "jpg"},
		"archive.tar.gz":       {"archive.tar", "gz"},
		".hidden":              {"hidden", ""},
		"résumé.txt":           {"rsum", "txt"},
		"..":                   {"", ""},
	}
	for in, want := range cases {
		base, ext := splitFilename(secureFilename(in))
		assert.Equal(t, want.base, base, in)
		assert.Equal(t, want.ext, ext, in)
	}
}

func TestParseID(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)

	id := uuid.New()
	got, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

// --- helpers ---

func newTestService(t *testing.T, cfg config.UploadConfig) (*Service, string) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	root := t.TempDir()
	blobs, err := file.NewLocalBlobStore(root)
	require.NoError(t, err)

	key := make([]byte, cryptox.KeySize)
	_, err = rand.Read(key)
	require.NoError(t, err)

	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	codec := extcodec.Default()
	store := file.NewStore(
		file.NewBadgerRepository(db),
		blobs,
		cryptox.NewEngine(cryptox.StaticKey(key)),
		codec,
		file.WithClock(now),
	)
	return NewService(store, codec, cfg, nil), root
}

func names(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.OriginalName)
	}
	return out
}
