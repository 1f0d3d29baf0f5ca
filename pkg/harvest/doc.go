// Package harvest moves finished core dumps from the host dump directory to
// remote storage.
//
// A pass lists the directory once and handles each regular file in turn:
//
//  1. open the file read-only
//  2. take a non-blocking shared advisory lock (flock)
//  3. read the content and hand it to an Uploader
//  4. delete the file once the upload is confirmed
//
// The composer holds an exclusive lock on a dump while it is still being
// written, so a file whose lock cannot be taken is skipped and offered again
// on the next pass. A failure on one file never stops the pass; the file is
// left in place and retried on the next interval.
//
// Usage:
//
//	h := harvest.New("/var/mnt/core-dump-handler/core")
//	res, err := h.Pass(ctx, uploader)
//	if err != nil {
//	    slog.Error("scan failed", "error", err)
//	}
//	slog.Info("pass complete", "uploaded", res.Uploaded, "skipped", res.Skipped)
//
// Each outcome is counted in Prometheus metrics exported by this package.
// An optional Notifier is told about every confirmed upload.
package harvest
