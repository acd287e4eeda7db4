package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/upload"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// UploadFile checks the size limit of the file field name, uploads f and
// stores the resulting FileRef. An oversize file sets the field error without
// uploading. An upload failure sets the field error and leaves the previous
// value in place. If the field changed while the upload was in flight the
// result is discarded and ErrStaleResult is returned.
func (w *Wizard) UploadFile(ctx context.Context, name string, f upload.File) error {
	def, err := w.lookup(name)
	if err != nil {
		return err
	}
	fileField, ok := def.(field.File)
	if !ok {
		return fmt.Errorf("%w: UploadFile on %s field %q", ErrKindMismatch, def.Kind(), name)
	}

	w.mu.Lock()
	if msg := validation.FileSize(fileField, f.Size); msg != "" {
		w.errors[name] = msg
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFileTooLarge, msg)
	}
	if w.uploader == nil {
		w.mu.Unlock()
		return ErrNoUploader
	}
	w.gen[name]++
	started := w.gen[name]
	w.mu.Unlock()

	if f.Path == "" {
		f.Path = fileField.Path
	}
	res, uerr := w.uploader.Upload(ctx, f)
	if uerr == nil && res.URL == "" {
		uerr = upload.ErrMissingURL
	}

	w.mu.Lock()
	if w.gen[name] != started {
		w.mu.Unlock()
		w.logger.Warn("wizard_upload_stale", "field", name, "file", f.Name)
		if uerr == nil {
			w.discardUpload(ctx, upload.Ref(f, res))
		}
		return ErrStaleResult
	}
	defer w.mu.Unlock()

	if uerr != nil {
		w.errors[name] = upload.Message(uerr)
		return fmt.Errorf("wizard: upload %q: %w", name, uerr)
	}
	w.values[name] = upload.Ref(f, res)
	delete(w.errors, name)
	w.persistLocked(ctx)
	return nil
}

// RemoveFile clears a file field and asks the delete endpoint to drop the
// stored object. The value is cleared even when the delete call fails; such
// failures are only logged.
func (w *Wizard) RemoveFile(ctx context.Context, name string) error {
	def, err := w.lookup(name)
	if err != nil {
		return err
	}
	if def.Kind() != field.KindFile {
		return fmt.Errorf("%w: RemoveFile on %s field %q", ErrKindMismatch, def.Kind(), name)
	}

	w.mu.Lock()
	ref, had := w.values.File(name)
	w.setLocked(ctx, name, nil)
	w.mu.Unlock()

	if had {
		w.discardUpload(ctx, ref)
	}
	return nil
}

func (w *Wizard) discardUpload(ctx context.Context, ref field.FileRef) {
	key := upload.DeriveKey(ref)
	if key == "" || w.uploader == nil {
		return
	}
	if err := w.uploader.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("wizard_file_delete_failed", "key", key, "error", err)
	}
}
