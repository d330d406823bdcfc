package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/logger"
	pipelineerrors "github.com/dealmungchi/fuaas/pkg/errors"
)

// Open creates the blob store named by driver
func Open(driver, redisAddr string, redisDB int, keyPrefix, memcacheAddr string) (Store, error) {
	switch driver {
	case "redis":
		return NewRedisStore(redisAddr, redisDB, keyPrefix), nil
	case "memcache":
		return NewMemcacheStore(memcacheAddr, keyPrefix), nil
	default:
		return nil, pipelineerrors.NewConfiguration(fmt.Sprintf("unsupported blob driver: %s", driver), nil)
	}
}

// ListImages returns the "<id>.png" files of dir keyed by id
func ListImages(dir string) (map[int64]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pipelineerrors.NewInput(dir, "failed to read image directory", err)
	}

	images := make(map[int64]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := quotes.ParseImageFileName(entry.Name()); ok {
			images[id] = filepath.Join(dir, entry.Name())
		}
	}
	return images, nil
}

// LoadDir uploads every screenshot in dir to store. onProgress, when set, is called once
// per uploaded image. It returns the number of uploaded images.
func LoadDir(ctx context.Context, store Store, dir string, onProgress func()) (int, error) {
	log := logger.ForBlob()

	images, err := ListImages(dir)
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for id, path := range images {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return uploaded, pipelineerrors.NewInput(path, "failed to read image", err)
		}
		if err := store.Put(ctx, id, data); err != nil {
			return uploaded, err
		}

		uploaded++
		log.Debug().Int64("id", id).Int("bytes", len(data)).Msg("Uploaded image")
		if onProgress != nil {
			onProgress()
		}
	}

	log.Info().Int("uploaded", uploaded).Str("dir", dir).Msg("Images loaded")
	return uploaded, nil
}
