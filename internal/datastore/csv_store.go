package datastore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"StockForecaster/internal/model"
)

const (
	delimiter       = ","
	fieldCount      = 6
	predictionsTail = "_predictions"
	fileExt         = ".csv"

	// PredictionHeader is the first line of every prediction artifact.
	PredictionHeader = "Date,Predicted_Close"
	// PlaceholderDate fills the date column of prediction artifacts.
	PlaceholderDate = "YYYY-MM-DD"
	// UploadPrefix prefixes symbols synthesized for uploaded series.
	UploadPrefix = "upload_"
)

// RequiredColumns must all appear in a series header.
var RequiredColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// CSVStore keeps one CSV file per symbol under a root directory.
type CSVStore struct {
	root string
}

// NewCSVStore creates a store rooted at dir. The directory is not created.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{root: dir}
}

// Root returns the storage directory.
func (s *CSVStore) Root() string { return s.root }

// SeriesPath returns the file holding symbol's history.
func (s *CSVStore) SeriesPath(symbol string) string {
	return filepath.Join(s.root, symbol+fileExt)
}

// PredictionPath returns the file holding symbol's latest prediction artifact.
func (s *CSVStore) PredictionPath(symbol string) string {
	return filepath.Join(s.root, symbol+predictionsTail+fileExt)
}

// ReadSeries parses symbol's history in file order. The first line is always
// skipped as a header. A single trailing comma is ignored. Rows without
// exactly six fields, or whose open, high,
// low, close or volume do not parse as floats, are dropped without error.
func (s *CSVStore) ReadSeries(symbol string) ([]model.StockRecord, error) {
	path := s.SeriesPath(symbol)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open file %s: %v", ErrNotFound, path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []model.StockRecord
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		if rec, ok := parseRow(symbol, sc.Text()); ok {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNotFound, path, err)
	}
	return records, nil
}

func parseRow(symbol, line string) (model.StockRecord, bool) {
	line = strings.TrimRight(line, "\r")
	// one trailing delimiter does not open a seventh field
	line = strings.TrimSuffix(line, delimiter)
	parts := strings.Split(line, delimiter)
	if len(parts) != fieldCount {
		return model.StockRecord{}, false
	}
	var vals [fieldCount - 1]float64
	for i := 1; i < fieldCount; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return model.StockRecord{}, false
		}
		vals[i-1] = v
	}
	return model.StockRecord{
		Symbol: symbol,
		Date:   parts[0],
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}

// WriteSeries creates or overwrites symbol's prediction artifact.
// The date column carries PlaceholderDate; forecast dates are not derived.
func (s *CSVStore) WriteSeries(symbol string, values []float64) error {
	path := s.PredictionPath(symbol)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: could not create file %s: %v", ErrWriteFailed, path, err)
	}

	w := bufio.NewWriter(f)
	w.WriteString(PredictionHeader + "\n")
	for _, v := range values {
		w.WriteString(PlaceholderDate + delimiter + FormatValue(v) + "\n")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrWriteFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrWriteFailed, path, err)
	}
	return nil
}

// WriteRecords creates or overwrites symbol's history with records.
func (s *CSVStore) WriteRecords(symbol string, records []model.StockRecord) error {
	path := s.SeriesPath(symbol)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: could not create file %s: %v", ErrWriteFailed, path, err)
	}

	w := bufio.NewWriter(f)
	w.WriteString(strings.Join(RequiredColumns, delimiter) + "\n")
	for _, r := range records {
		fields := []string{r.Date, formatPrice(r.Open), formatPrice(r.High), formatPrice(r.Low), formatPrice(r.Close), formatPrice(r.Volume)}
		w.WriteString(strings.Join(fields, delimiter) + "\n")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrWriteFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrWriteFailed, path, err)
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue renders a predicted value with six significant digits.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// ValidateHeader reports whether the first line of path contains every
// required column name as a case-sensitive substring. Order, count and extra
// columns are not checked. Unreadable files report false.
func ValidateHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return false
	}
	header := sc.Text()
	for _, col := range RequiredColumns {
		if !strings.Contains(header, col) {
			return false
		}
	}
	return true
}

// ValidateHeader checks the header of symbol's stored series.
func (s *CSVStore) ValidateHeader(symbol string) bool {
	return ValidateHeader(s.SeriesPath(symbol))
}

// SaveUpload stores an uploaded series under a synthesized symbol and returns it.
func (s *CSVStore) SaveUpload(content []byte) (string, error) {
	symbol := UploadPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	path := s.SeriesPath(symbol)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("%w: could not create file %s: %v", ErrWriteFailed, path, err)
	}
	return symbol, nil
}

// Remove deletes symbol's series and prediction artifact. Missing files are ignored.
func (s *CSVStore) Remove(symbol string) error {
	for _, p := range []string{s.SeriesPath(symbol), s.PredictionPath(symbol)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
