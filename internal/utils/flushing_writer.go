package utils

import (
	"errors"
	"io"
	"sync"
	"syscall"
)

// FlushingWriter is the zap sink for git-id's diagnostics: every write is flushed so log lines interleave
// correctly with git's own output, and Sync succeeds on terminals and pipes that cannot be fsynced.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// NewFlushingWriter wraps writer. Nil and already wrapped writers are returned as is.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write writes data and flushes the underlying writer when it buffers.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedWriter, buffers := flushingWriter.writer.(flusher); buffers {
		return bytesWritten, bufferedWriter.Flush()
	}
	return bytesWritten, nil
}

// Sync syncs the underlying writer, ignoring the errors terminals and pipes report for fsync.
func (flushingWriter *FlushingWriter) Sync() error {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	syncableWriter, syncable := flushingWriter.writer.(syncer)
	if !syncable {
		return nil
	}
	if syncError := syncableWriter.Sync(); syncError != nil && !isUnsyncableSinkError(syncError) {
		return syncError
	}
	return nil
}

func isUnsyncableSinkError(syncError error) bool {
	return errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) || errors.Is(syncError, syscall.ENOTTY)
}
