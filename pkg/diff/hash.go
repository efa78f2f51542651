package diff

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/mergetree/pkg/models"
	"github.com/sdejongh/mergetree/pkg/storage"
)

// ReaderWrapper wraps readers opened during hashing, e.g. for rate limiting
type ReaderWrapper func(io.ReadCloser) io.ReadCloser

// hasher computes content hashes and binary sniffs for tree files
type hasher struct {
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

func newHasher(bufferSize int, wrapper ReaderWrapper) *hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &hasher{
		bufferSize:    bufferSize,
		readerWrapper: wrapper,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// snapshot hashes one file and builds its snapshot. The binary sniff
// sample is captured from the stream while hashing so the file is read
// exactly once. Content itself stays on disk until the snapshot's
// loader is invoked.
func (h *hasher) snapshot(ctx context.Context, treeName string, tree storage.Tree, info storage.FileInfo) (*models.FileSnapshot, error) {
	reader, err := tree.Open(ctx, info.RelativePath)
	if err != nil {
		return nil, &models.TreeAccessError{Tree: treeName, Path: info.RelativePath, Err: err}
	}
	defer reader.Close()

	var wrapped io.Reader = reader
	if h.readerWrapper != nil {
		rc := h.readerWrapper(reader)
		defer rc.Close()
		wrapped = rc
	}

	hash := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	sample := make([]byte, 0, binarySniffLen)

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, readErr := wrapped.Read(buffer)
		if n > 0 {
			hash.Write(buffer[:n])
			if len(sample) < binarySniffLen {
				take := binarySniffLen - len(sample)
				if take > n {
					take = n
				}
				sample = append(sample, buffer[:take]...)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &models.TreeAccessError{Tree: treeName, Path: info.RelativePath, Err: readErr}
		}
	}

	relPath := info.RelativePath
	loader := func() ([]byte, error) {
		return tree.ReadFile(ctx, relPath)
	}

	return models.NewFileSnapshot(
		relPath,
		fmt.Sprintf("%x", hash.Sum(nil)),
		info.Size,
		isBinaryData(sample),
		loader,
	), nil
}
