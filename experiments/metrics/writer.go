package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// GameRecord is one finished trial game.
type GameRecord struct {
	ID       int
	White    string // Engine name
	Black    string // Engine name
	Outcome  string
	Plies    int
	Duration time.Duration
	Moves    string
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped folder for the named trial under root.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create game records file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"id", "white", "black", "outcome", "plies", "duration", "moves"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write game records header")
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.White,
			record.Black,
			record.Outcome,
			strconv.Itoa(record.Plies),
			record.Duration.String(),
			record.Moves,
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "failed to write game record row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush game records")
}
