package sortlib

import (
	"errors"
	"fmt"
	"io"
	"os"

	sorterrors "github.com/tamirms/sortlib/errors"
)

// FileMerger merges N sorted record files into one sorted output file
// using a fixed amount of memory.
//
// Each input is read through its own reusable buffer of inputBatchBytes
// (rounded down to whole records) and the output is written through a
// reusable buffer of outputBatchRecords records, so the footprint is
// O(N*inputBatchBytes + outputBatchRecords*RecordSize) no matter how large
// the files are.
//
// There is no cancellation. A failed Run leaves a partially written output
// file that must be treated as invalid.
type FileMerger struct {
	inputFiles         []string
	outputFile         string
	inputBatchBytes    int
	outputBatchRecords int
	cfg                *fileMergeConfig

	ran   bool
	stats FileMergeStats
}

// FileMergeStats describes a completed Run.
type FileMergeStats struct {
	Records int64 // Records written to the output
	Refills int   // Input chunks read after the initial one
	Writes  int   // Output batches written
}

// NewFileMerger creates a FileMerger. Files are not opened until Run.
func NewFileMerger(inputFiles []string, outputFile string, inputBatchBytes, outputBatchRecords int, opts ...FileMergeOption) (*FileMerger, error) {
	if inputBatchBytes < RecordSize {
		return nil, fmt.Errorf("%w: input batch of %d bytes holds no record", sorterrors.ErrInvalidBatchSize, inputBatchBytes)
	}
	if outputBatchRecords < 1 {
		return nil, fmt.Errorf("%w: output batch of %d records", sorterrors.ErrInvalidBatchSize, outputBatchRecords)
	}

	cfg := defaultFileMergeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &FileMerger{
		inputFiles:         append([]string(nil), inputFiles...),
		outputFile:         outputFile,
		inputBatchBytes:    inputBatchBytes,
		outputBatchRecords: outputBatchRecords,
		cfg:                cfg,
	}, nil
}

// Stats returns counters for the last Run.
func (fm *FileMerger) Stats() FileMergeStats {
	return fm.stats
}

// Run merges the inputs into the output file and returns the number of
// bytes written, which equals the combined size of the inputs.
// Run can only be called once.
func (fm *FileMerger) Run() (total int64, err error) {
	if fm.ran {
		return 0, sorterrors.ErrMergerClosed
	}
	fm.ran = true

	streams, expected, err := fm.openInputs()
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, closeStreams(streams))
	}()

	out, err := os.OpenFile(fm.outputFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create output %s: %w", fm.outputFile, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output %s: %w", fm.outputFile, cerr))
		}
	}()

	// Reserve the final size so a full disk fails up front.
	if fm.cfg.preallocate && expected > 0 {
		if err := fallocateFile(out, expected); err != nil {
			return 0, fmt.Errorf("pre-allocate output: %w", err)
		}
	}

	total, err = fm.merge(streams, out)
	if err != nil {
		return total, err
	}
	if total != expected {
		return total, fmt.Errorf("%w: wrote %d bytes, inputs hold %d", sorterrors.ErrSizeMismatch, total, expected)
	}

	if fm.cfg.sync {
		if err := out.Sync(); err != nil {
			return total, fmt.Errorf("sync output: %w", err)
		}
	}
	return total, nil
}

// merge drives a refilling Merger over the input streams.
func (fm *FileMerger) merge(streams []*inputStream, out *os.File) (int64, error) {
	views := make([][]Record, len(streams))
	for i, s := range streams {
		chunk, err := s.next()
		if err != nil {
			return 0, err
		}
		views[i] = chunk
	}

	m, err := NewMerger(views, WithRefills())
	if err != nil {
		return 0, err
	}

	var (
		outBuf  = make([]Record, fm.outputBatchRecords)
		filled  int
		written int64
	)
	flush := func() error {
		if filled == 0 {
			return nil
		}
		n, err := out.Write(RecordBytes(outBuf[:filled]))
		written += int64(n)
		if err != nil {
			return fmt.Errorf("write output %s: %w", fm.outputFile, err)
		}
		fm.stats.Writes++
		fm.stats.Records += int64(filled)
		filled = 0
		return nil
	}

	for m.State() != StateExhausted {
		n, depleted, err := m.GetBatch(outBuf[filled:])
		if err != nil {
			return written, err
		}
		filled += n
		if filled == len(outBuf) {
			if err := flush(); err != nil {
				return written, err
			}
		}

		if depleted < 0 {
			continue
		}
		// Records handed out earlier were copied into outBuf, so the
		// stream may overwrite its buffer with the next chunk.
		chunk, err := streams[depleted].next()
		if err != nil {
			return written, err
		}
		if len(chunk) > 0 {
			fm.stats.Refills++
		}
		if err := m.Refill(chunk, depleted); err != nil {
			return written, fmt.Errorf("refill %s: %w", streams[depleted].path, err)
		}
	}

	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// openInputs opens every input and returns the combined input size.
// On failure, files opened so far are closed.
func (fm *FileMerger) openInputs() ([]*inputStream, int64, error) {
	recordsPerChunk := fm.inputBatchBytes / RecordSize
	streams := make([]*inputStream, 0, len(fm.inputFiles))
	var total int64
	for _, path := range fm.inputFiles {
		s, size, err := openInputStream(path, recordsPerChunk)
		if err != nil {
			return nil, 0, errors.Join(err, closeStreams(streams))
		}
		streams = append(streams, s)
		total += size
	}
	return streams, total, nil
}

// inputStream reads a sorted record file chunk by chunk through one
// reusable buffer.
type inputStream struct {
	path string
	file *os.File
	buf  []Record
	eof  bool
}

func openInputStream(path string, recordsPerChunk int) (*inputStream, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Join(fmt.Errorf("stat input %s: %w", path, err), f.Close())
	}
	size := stat.Size()
	if size%RecordSize != 0 {
		return nil, 0, errors.Join(
			fmt.Errorf("%w: %s is %d bytes", sorterrors.ErrCorruptFile, path, size), f.Close())
	}

	fadviseSequential(int(f.Fd()), 0, size)

	// Never allocate more than the file can fill.
	chunk := min(int64(recordsPerChunk), size/RecordSize)
	return &inputStream{
		path: path,
		file: f,
		buf:  make([]Record, chunk),
		eof:  size == 0,
	}, size, nil
}

// next reads the next chunk into the stream's buffer, overwriting the
// previous chunk. It returns an empty view at end of file.
func (s *inputStream) next() ([]Record, error) {
	if s.eof {
		return nil, nil
	}
	n, err := io.ReadFull(s.file, RecordBytes(s.buf))
	switch {
	case errors.Is(err, io.EOF):
		s.eof = true
		return nil, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
	case err != nil:
		return nil, fmt.Errorf("read input %s: %w", s.path, err)
	}
	if n%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %s ends with a partial record", sorterrors.ErrCorruptFile, s.path)
	}
	return s.buf[:n/RecordSize], nil
}

func closeStreams(streams []*inputStream) error {
	var errs []error
	for _, s := range streams {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input %s: %w", s.path, err))
		}
	}
	return errors.Join(errs...)
}
