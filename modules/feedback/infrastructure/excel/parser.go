package excel

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/normalize"
)

// Tab naming convention shared with the workbook templates.
const (
	MetadataSheet = "_xl_metadata"
	DataSheet     = "Feedback Form"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookStructureError reports required tabs absent from the workbook.
// Fatal for the upload.
type WorkbookStructureError struct {
	Missing []string
}

func (e *WorkbookStructureError) Error() string {
	return fmt.Sprintf("workbook is missing required tabs: %s", strings.Join(e.Missing, ", "))
}

// UnsupportedFileError reports an upload that is not an xlsx workbook at all.
type UnsupportedFileError struct {
	Detected string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("expected an .xlsx workbook, detected %s", e.Detected)
}

// Extraction is the raw, untyped result of parsing one workbook. Values are
// unconverted cell strings; the normalizer owns typing and the UTC contract.
type Extraction struct {
	SchemaVersion string
	Sector        string
	IncidenceID   int64
	Fields        []normalize.RawField
	CellIssues    []staging.CellIssue
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse opens the workbook, locates the metadata and data tabs by naming
// convention and extracts ordered (key, raw value) pairs. Malformed cells
// are collected as issues and extraction continues, so the caller can show
// a complete diagnostic list rather than the first failure.
func (p *Parser) Parse(r io.Reader) (*Extraction, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}

	mime := mimetype.Detect(buf)
	if !mime.Is(xlsxMIME) {
		return nil, &UnsupportedFileError{Detected: mime.String()}
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := make(map[string]bool, len(f.GetSheetList()))
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	var missing []string
	for _, required := range []string{MetadataSheet, DataSheet} {
		if !sheets[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &WorkbookStructureError{Missing: missing}
	}

	ext := &Extraction{}
	p.readMetadata(f, ext)
	p.readData(f, ext)
	return ext, nil
}

func (p *Parser) readMetadata(f *excelize.File, ext *Extraction) {
	rows, err := f.GetRows(MetadataSheet)
	if err != nil {
		ext.CellIssues = append(ext.CellIssues, staging.CellIssue{
			Sheet:   MetadataSheet,
			Cell:    "A1",
			Message: err.Error(),
		})
		return
	}
	for i, row := range rows {
		key, value := rowPair(row)
		if key == "" {
			continue
		}
		switch key {
		case "schema_version":
			ext.SchemaVersion = value
		case "sector":
			ext.Sector = value
		case "incidence_id":
			if value == "" || strings.EqualFold(value, "new") {
				continue
			}
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				ext.CellIssues = append(ext.CellIssues, staging.CellIssue{
					Sheet:   MetadataSheet,
					Cell:    cellName(2, i+1),
					Message: fmt.Sprintf("incidence_id must be numeric or \"new\", got %q", value),
				})
				continue
			}
			ext.IncidenceID = id
		}
	}
}

func (p *Parser) readData(f *excelize.File, ext *Extraction) {
	rows, err := f.GetRows(DataSheet)
	if err != nil {
		ext.CellIssues = append(ext.CellIssues, staging.CellIssue{
			Sheet:   DataSheet,
			Cell:    "A1",
			Message: err.Error(),
		})
		return
	}
	for i, row := range rows {
		key, value := rowPair(row)
		if key == "" {
			// Blank rows and section separators are layout, not data.
			continue
		}
		if isFormulaError(value) {
			ext.CellIssues = append(ext.CellIssues, staging.CellIssue{
				Sheet:   DataSheet,
				Cell:    cellName(2, i+1),
				Message: fmt.Sprintf("cell contains spreadsheet error %q", value),
			})
			continue
		}
		ext.Fields = append(ext.Fields, normalize.RawField{Key: key, Value: value})
	}
}

// formulaErrorLiterals are the error values Excel renders into a cell when a
// formula fails. Free-text values that merely start with "#" are real data.
var formulaErrorLiterals = map[string]struct{}{
	"#DIV/0!":       {},
	"#N/A":          {},
	"#NAME?":        {},
	"#NULL!":        {},
	"#NUM!":         {},
	"#REF!":         {},
	"#VALUE!":       {},
	"#SPILL!":       {},
	"#CALC!":        {},
	"#GETTING_DATA": {},
}

func isFormulaError(value string) bool {
	_, ok := formulaErrorLiterals[strings.ToUpper(value)]
	return ok
}

func rowPair(row []string) (key, value string) {
	if len(row) > 0 {
		key = strings.TrimSpace(row[0])
	}
	if len(row) > 1 {
		value = strings.TrimSpace(row[1])
	}
	return key, value
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("col%d,row%d", col, row)
	}
	return name
}
