package file

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const sniffBytes = 4096

// SniffDelimiter picks the CSV delimiter from a leading sample: files with
// more semicolons than commas are semicolon-separated.
func SniffDelimiter(sample []byte) rune {
	if bytes.Count(sample, []byte{';'}) > bytes.Count(sample, []byte{','}) {
		return ';'
	}
	return ','
}

func decoderFor(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

// ReadCSVFile loads a CSV file into a DataFrame. The charset is decoded
// first when one is configured, then the delimiter is sniffed from the
// leading bytes.
func ReadCSVFile(path, charset string) (dataframe.DataFrame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// 1. decode the configured charset
	enc, err := decoderFor(charset)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if enc != nil {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to decode %s as %s: %w", path, charset, err)
		}
		raw = decoded
	}

	// 2. sniff the delimiter
	sample := raw
	if len(sample) > sniffBytes {
		sample = sample[:sniffBytes]
	}
	delim := SniffDelimiter(sample)

	// 3. parse with type detection
	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: %w", path, df.Err)
	}
	return df, nil
}

// ReadXLSXFile loads the first sheet of an xlsx workbook, first row as the
// header. Short rows are padded so ragged sheets still load.
func ReadXLSXFile(path string) (dataframe.DataFrame, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(wb.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", path)
	}
	sheet := wb.Sheets[0]

	var records [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			v := cell.String()
			if v != "" {
				empty = false
			}
			cells = append(cells, v)
		}
		if empty {
			continue
		}
		records = append(records, cells)
	}
	if len(records) < 1 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s of %s is empty", sheet.Name, path)
	}

	width := len(records[0])
	for i, rec := range records {
		for len(rec) < width {
			rec = append(rec, "")
		}
		records[i] = rec[:width]
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to load %s: %w", path, df.Err)
	}
	return df, nil
}
