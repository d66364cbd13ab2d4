package sessioninfra

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/Abraxas-365/fateweaver/pkg/fsx"
	"github.com/Abraxas-365/fateweaver/pkg/kernel"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/session"
)

const journalPath = "turns.jsonl"

// FileTurnJournal keeps the turn history as JSON Lines behind an
// fsx.FileSystem, one record per line, oldest first.
type FileTurnJournal struct {
	fs fsx.FileSystem
	mu sync.Mutex
}

func NewFileTurnJournal(fs fsx.FileSystem) *FileTurnJournal {
	return &FileTurnJournal{fs: fs}
}

// Append adds one record to the end of the journal.
func (j *FileTurnJournal) Append(ctx context.Context, record session.TurnRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	line, err := json.Marshal(record)
	if err != nil {
		return session.ErrJournalFailure(err)
	}

	var buf []byte
	exists, err := j.fs.Exists(ctx, journalPath)
	if err != nil {
		return session.ErrJournalFailure(err).WithDetail("path", journalPath)
	}
	if exists {
		buf, err = j.fs.ReadFile(ctx, journalPath)
		if err != nil {
			return session.ErrJournalFailure(err).WithDetail("path", journalPath)
		}
	}

	buf = append(buf, line...)
	buf = append(buf, '\n')

	if err := j.fs.WriteFile(ctx, journalPath, buf); err != nil {
		return session.ErrJournalFailure(err).WithDetail("path", journalPath)
	}
	return nil
}

// List pages through the journal, newest first.
func (j *FileTurnJournal) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[session.TurnRecord], error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	page, size := normalizePage(opts)

	exists, err := j.fs.Exists(ctx, journalPath)
	if err != nil {
		return kernel.Paginated[session.TurnRecord]{}, session.ErrJournalFailure(err).WithDetail("path", journalPath)
	}
	if !exists {
		return kernel.NewPaginated([]session.TurnRecord{}, page, size, 0), nil
	}

	buf, err := j.fs.ReadFile(ctx, journalPath)
	if err != nil {
		return kernel.Paginated[session.TurnRecord]{}, session.ErrJournalFailure(err).WithDetail("path", journalPath)
	}

	records := decodeJournal(buf)

	// Stored oldest first, served newest first.
	for left, right := 0, len(records)-1; left < right; left, right = left+1, right-1 {
		records[left], records[right] = records[right], records[left]
	}

	total := len(records)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return kernel.NewPaginated(records[start:end], page, size, total), nil
}

// decodeJournal parses the journal lines. A torn or corrupt line is
// skipped with a warning rather than poisoning the whole history.
func decodeJournal(buf []byte) []session.TurnRecord {
	records := make([]session.TurnRecord, 0)

	scanner := bufio.NewScanner(bytes.NewReader(buf))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record session.TurnRecord
		if err := json.Unmarshal(line, &record); err != nil {
			logx.WithError(err).Warn("skipping unreadable turn journal line")
			continue
		}
		records = append(records, record)
	}
	return records
}

func normalizePage(opts kernel.PaginationOptions) (page, size int) {
	page, size = opts.Page, opts.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return page, size
}
