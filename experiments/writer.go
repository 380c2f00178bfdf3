package experiments

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"treeval/config"
)

type Writer struct {
	dir string
}

// NewWriter creates a subfolder of baseDir named by the current timestamp.
func NewWriter(baseDir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	dir := filepath.Join(baseDir, "timing", timestamp)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		dir: dir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) WriteSetup(cfg config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode setup: %w", err)
	}
	err = os.WriteFile(filepath.Join(w.dir, "setup.json"), data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write setup file: %w", err)
	}
	return nil
}

func (w *Writer) WriteRecords(records []Record) error {
	path := filepath.Join(w.dir, "runs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create runs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"size", "repeat", "words", "build_ns", "evaluate_ns", "offload_ns", "value", "action", "result_action", "result_reward", "match"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write runs header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Size),
			strconv.Itoa(record.Repeat),
			strconv.Itoa(record.Words),
			strconv.FormatInt(record.Build.Nanoseconds(), 10),
			strconv.FormatInt(record.Evaluate.Nanoseconds(), 10),
			strconv.FormatInt(record.Offload.Nanoseconds(), 10),
			strconv.FormatFloat(record.Value, 'g', -1, 64),
			strconv.Itoa(record.Action),
			strconv.Itoa(int(record.Result.Action)),
			strconv.Itoa(int(record.Result.Reward)),
			strconv.FormatBool(record.Match),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write run row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
