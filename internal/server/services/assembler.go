package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/dmitrijs2005/artvault/internal/server/storage"
)

// PutChunk buffers one chunk of the submission's asset. Chunks may arrive in
// any order; resending an index replaces the earlier chunk.
func (s *SubmissionService) PutChunk(ctx context.Context, id int64, index int, data []byte) (err error) {
	ctx, span := s.start(ctx, "PutChunk", id)
	defer func() { s.end(ctx, span, "PutChunk", id, err) }()

	unlock := s.locks.RLock(id)
	defer unlock()

	if _, err := s.load(ctx, id, models.KindPendingUpload); err != nil {
		return err
	}

	if index < 0 || index >= s.maxChunks {
		return fmt.Errorf("%w: %d not in [0, %d)", common.ErrChunkIndexOutOfRange, index, s.maxChunks)
	}

	if err := s.buffers.getOrCreate(id).put(index, data, s.maxAssetBytes); err != nil {
		if errors.Is(err, common.ErrSizeExceeded) {
			s.dropBuffer(id)
		}
		return err
	}
	s.metrics.buffersActive.Set(float64(s.buffers.len()))

	s.metrics.chunksReceived.Inc()
	s.metrics.chunkBytes.Add(float64(len(data)))
	s.log.Debug(ctx, "chunk stored", "submission_id", id, "index", index, "size", len(data))
	return nil
}

// FinalizeAsset reassembles the buffered chunks, checks them against the
// declared size and hash, stores the bytes and moves the submission to
// AwaitingFee. Size and hash mismatches discard the buffer.
func (s *SubmissionService) FinalizeAsset(ctx context.Context, id int64, mediaType string, declaredSize int64, declaredHash []byte) (meta *models.AssetMeta, err error) {
	ctx, span := s.start(ctx, "FinalizeAsset", id)
	defer func() { s.end(ctx, span, "FinalizeAsset", id, err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.load(ctx, id, models.KindPendingUpload); err != nil {
		return nil, err
	}

	if _, ok := s.allowedMedia[mediaType]; !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedMediaType, mediaType)
	}
	if declaredSize > s.maxAssetBytes {
		return nil, fmt.Errorf("%w: declared %d, limit %d", common.ErrSizeExceeded, declaredSize, s.maxAssetBytes)
	}

	buf, ok := s.buffers.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: no chunks received", common.ErrIncompleteAsset)
	}
	data, count, err := buf.assemble()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	if int64(len(data)) != declaredSize {
		s.dropBuffer(id)
		return nil, fmt.Errorf("%w: assembled %d, declared %d", common.ErrSizeMismatch, len(data), declaredSize)
	}
	if !bytes.Equal(sum[:], declaredHash) {
		s.dropBuffer(id)
		return nil, fmt.Errorf("%w: assembled %x", common.ErrHashMismatch, sum)
	}

	meta = &models.AssetMeta{
		ContentHash: sum[:],
		MediaType:   mediaType,
		ByteSize:    int64(len(data)),
		ChunkCount:  count,
		StorageKey:  storage.AssetKey(id),
	}

	done := s.collaborator("store")
	err = s.store.Put(ctx, meta.StorageKey, data, mediaType)
	done()
	if err != nil {
		return nil, err
	}

	if err := s.registry.Transition(ctx, id, models.Transition{
		From:  models.KindPendingUpload,
		To:    models.AwaitingFee{},
		Asset: meta,
	}); err != nil {
		return nil, err
	}

	s.dropBuffer(id)
	s.log.Info(ctx, "asset finalized", "submission_id", id, "size", meta.ByteSize, "chunks", count)
	return meta, nil
}

func (s *SubmissionService) dropBuffer(id int64) {
	s.buffers.drop(id)
	s.metrics.buffersActive.Set(float64(s.buffers.len()))
}
