package sheetsapi

import (
	"github.com/go-resty/resty/v2"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

type spreadsheet struct {
	SpreadsheetID string  `json:"spreadsheetId"`
	Sheets        []sheet `json:"sheets"`
}

type sheet struct {
	Properties sheetProperties `json:"properties"`
}

type sheetProperties struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
}

// find the worksheet by the title, or by the position if the title is not set.
func (s *spreadsheet) find(ref store.Ref) (sheetProperties, error) {
	if ref.SheetTitle != "" {
		for _, sh := range s.Sheets {
			if sh.Properties.Title == ref.SheetTitle {
				return sh.Properties, nil
			}
		}
		return sheetProperties{}, errors.Errorf(`worksheet "%s" not found in spreadsheet "%s"`, ref.SheetTitle, ref.SpreadsheetID)
	}

	if ref.SheetIndex >= len(s.Sheets) {
		return sheetProperties{}, errors.Errorf(
			`worksheet index %d is out of range, spreadsheet "%s" has %d worksheet(s)`,
			ref.SheetIndex, ref.SpreadsheetID, len(s.Sheets),
		)
	}
	props := s.Sheets[ref.SheetIndex].Properties
	props.Index = ref.SheetIndex
	return props, nil
}

type valueRange struct {
	Range          string     `json:"range,omitempty"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

type appendResponse struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	TableRange    string        `json:"tableRange"`
	Updates       updateSummary `json:"updates"`
}

type updateSummary struct {
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int    `json:"updatedRows"`
	UpdatedColumns int    `json:"updatedColumns"`
	UpdatedCells   int    `json:"updatedCells"`
}

// errorBody is the standard error envelope of Google APIs.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func requestError(res *resty.Response) error {
	err := store.RequestError{
		Method:     res.Request.Method,
		URL:        res.Request.URL,
		StatusCode: res.StatusCode(),
	}
	if body, ok := res.Error().(*errorBody); ok && body != nil {
		err.Status = body.Error.Status
		err.Message = body.Error.Message
	}
	if err.Message == "" {
		err.Message = res.String()
	}
	return err
}
