package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/fng-correlation-backend/internal/models"
)

const (
	FileName    = "data.csv"
	ContentType = "text/csv; charset=utf-8"
	dateLayout  = "02.01.2006"
)

var Header = []string{"Date", "Price", "Fear and Greed Index"}

// Rows renders aligned records as spreadsheet rows, header first. Dates are
// DD.MM.YYYY in loc and prices use a decimal comma.
func Rows(records []models.AlignedRecord, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Header)
	for _, r := range records {
		rows = append(rows, []string{
			time.UnixMilli(r.Time).In(loc).Format(dateLayout),
			DecimalComma(r.Price),
			strconv.Itoa(r.Sentiment.Value),
		})
	}
	return rows
}

// DecimalComma formats f in its shortest round-trip form with a comma as
// the decimal separator. Whole numbers keep one fractional digit ("100,0").
// Magnitudes of 1e16 and above, or below 1e-4, use exponent notation
// ("1e+21", "1,5e-07").
func DecimalComma(f float64) string {
	var s string
	if sci := strconv.FormatFloat(f, 'e', -1, 64); f != 0 && useExponent(sci) {
		s = sci
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}
	}
	return strings.Replace(s, ".", ",", 1)
}

func useExponent(sci string) bool {
	i := strings.IndexByte(sci, 'e')
	if i < 0 {
		return false
	}
	exp, err := strconv.Atoi(sci[i+1:])
	if err != nil {
		return false
	}
	return exp < -4 || exp >= 16
}

// WriteCSV writes rows comma-delimited with CRLF line endings.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// TempFile is a per-request export artifact. Remove must be called once the
// file has been delivered.
type TempFile struct {
	Path string
}

func (f *TempFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteTempFile writes rows to a uniquely named file under dir so that
// concurrent exports never share an artifact. On error nothing is left behind.
func WriteTempFile(dir string, rows [][]string) (*TempFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "fng-export-"+uuid.NewString()+".csv")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}

	tf := &TempFile{Path: path}
	if err := WriteCSV(file, rows); err != nil {
		file.Close()
		tf.Remove()
		return nil, err
	}
	if err := file.Close(); err != nil {
		tf.Remove()
		return nil, fmt.Errorf("close export file: %w", err)
	}
	return tf, nil
}
