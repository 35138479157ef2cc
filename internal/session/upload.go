package session

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-pagebuilder/internal/registry"
)

// UploadStatus is the lifecycle state of one upload field.
type UploadStatus string

const (
	UploadIdle       UploadStatus = "idle"
	UploadInProgress UploadStatus = "uploading"
	UploadSucceeded  UploadStatus = "succeeded"
	UploadFailed     UploadStatus = "failed"
	UploadSuperseded UploadStatus = "superseded"
)

// UploadResult is the terminal outcome delivered on the channel returned by
// StartUpload. Superseded uploads resolve with UploadSuperseded and leave the
// document untouched.
type UploadResult struct {
	Status  UploadStatus
	URL     string
	Message string
}

// Uploader moves file bytes to remote storage and returns the public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
}

// fieldKey identifies one upload target. Keying by block rather than by
// selection means a result still lands on the right instance even if the
// user selects a different block while the transfer runs.
type fieldKey struct {
	blockID string
	field   string
}

// uploadSlot tracks the latest upload issued for a field. seq is a
// monotonic ticket: only the holder of the current ticket may publish its
// outcome, so a newer upload silently retires older in-flight ones.
type uploadSlot struct {
	seq    uint64
	status UploadStatus
	cancel context.CancelFunc
}

// UploadStatusFor reports the current state of the field's upload slot.
func (s *Session) UploadStatusFor(blockID, field string) UploadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.uploads[fieldKey{blockID: blockID, field: field}]
	if !ok {
		return UploadIdle
	}
	return slot.status
}

// StartUpload begins an asynchronous upload for an upload field of the
// selected block. The returned channel delivers exactly one result. On
// success the URL is written to the property of the block that was selected
// when the upload started. Starting a second upload for the same field
// cancels and supersedes the first; the stale outcome is discarded.
func (s *Session) StartUpload(ctx context.Context, field, filename string, body io.Reader) (<-chan UploadResult, error) {
	id, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	if s.uploader == nil {
		return nil, ErrUploaderRequired
	}

	inst, ok := s.doc.Get(id)
	if !ok {
		return nil, fmt.Errorf("session: block %s vanished before upload", id)
	}
	def, err := s.doc.Registry().DefinitionFor(inst.Type)
	if err != nil {
		return nil, err
	}
	spec, ok := def.Fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrNotUploadField, inst.Type, field)
	}
	if spec.Kind != registry.FieldUpload {
		return nil, fmt.Errorf("%w: %s.%s is %s", ErrNotUploadField, inst.Type, field, spec.Kind)
	}

	ctx, cancel := context.WithCancel(ctx)
	key := fieldKey{blockID: id, field: field}

	s.mu.Lock()
	slot, ok := s.uploads[key]
	if !ok {
		slot = &uploadSlot{}
		s.uploads[key] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
	}
	slot.seq++
	slot.status = UploadInProgress
	slot.cancel = cancel
	ticket := slot.seq
	s.mu.Unlock()

	results := make(chan UploadResult, 1)
	go s.runUpload(ctx, cancel, key, ticket, filename, body, results)
	return results, nil
}

func (s *Session) runUpload(ctx context.Context, cancel context.CancelFunc, key fieldKey, ticket uint64, filename string, body io.Reader, results chan<- UploadResult) {
	defer cancel()

	url, err := s.uploader.Upload(ctx, filename, body)

	s.mu.Lock()
	slot := s.uploads[key]
	if slot == nil || slot.seq != ticket {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded upload result", "block_id", key.blockID, "field", key.field)
		results <- UploadResult{Status: UploadSuperseded, Message: "superseded by a newer upload"}
		return
	}
	if err != nil {
		slot.status = UploadFailed
		slot.cancel = nil
		s.mu.Unlock()
		s.logger.Error("upload failed", "block_id", key.blockID, "field", key.field, "error", err)
		results <- UploadResult{Status: UploadFailed, Message: err.Error()}
		return
	}
	// Write under the same lock that guards the ticket, so a newer upload
	// for this field cannot start between the seq check and the write.
	writeErr := s.doc.SetProperty(key.blockID, key.field, url)
	if writeErr != nil {
		slot.status = UploadFailed
	} else {
		slot.status = UploadSucceeded
	}
	slot.cancel = nil
	s.mu.Unlock()

	if writeErr != nil {
		s.logger.Error("upload url rejected by document", "block_id", key.blockID, "field", key.field, "error", writeErr)
		results <- UploadResult{Status: UploadFailed, Message: writeErr.Error()}
		return
	}
	s.logger.Info("upload complete", "block_id", key.blockID, "field", key.field, "url", url)
	results <- UploadResult{Status: UploadSucceeded, URL: url}
}
