package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/services/spreadsheet"
)

var (
	orderingParam = "ordering"
	fileField     = "file"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryInt reads an int query parameter, def when missing or invalid.
func queryInt(ctx echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
		return n
	}
	return def
}

// queryBool reads "true"/"1" query parameters.
func queryBool(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

func paramInt64(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "invalid id"})
	}
	return id, nil
}

// previewRequest is the JSON shape of import previews sent without a file.
type previewRequest struct {
	Rows          []map[string]interface{} `json:"rows"`
	Term          string                   `json:"term"`
	ForceOverride bool                     `json:"forceOverride"`
}

func (pr previewRequest) records() []core.Record {
	out := make([]core.Record, 0, len(pr.Rows))
	for _, row := range pr.Rows {
		rec := make(core.Record, len(row))
		for k, v := range row {
			if v == nil {
				rec[k] = ""
				continue
			}
			rec[k] = fmt.Sprint(v)
		}
		out = append(out, rec)
	}
	return out
}

// bindPreview reads the rows of an import preview, either from an uploaded .csv/.xlsx
// file or from a JSON body. Term and forceOverride may come as form or JSON fields.
func bindPreview(ctx echo.Context) (previewRequest, []core.Record, error) {
	var pr previewRequest
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		records, err := readUpload(ctx)
		if err != nil {
			return pr, nil, err
		}
		pr.Term = ctx.FormValue("term")
		pr.ForceOverride, _ = strconv.ParseBool(ctx.FormValue("forceOverride"))
		return pr, records, nil
	}

	if err := ctx.Bind(&pr); err != nil {
		return pr, nil, errors.Wrap(err, "binding to previewRequest")
	}
	if pr.Rows == nil {
		return pr, nil, core.NewValidationError(nil, core.FieldError{Field: "rows", Error: "this field is required"})
	}
	return pr, pr.records(), nil
}

func readUpload(ctx echo.Context) ([]core.Record, error) {
	fh, err := ctx.FormFile(fileField)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, core.NewValidationError(nil, core.FieldError{Field: fileField, Error: "this field is required"})
		}
		return nil, errors.Wrap(err, "reading uploaded file")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	return spreadsheet.ReadRecords(fh.Filename, f)
}

// attachment sets the headers of a downloaded file.
func attachment(ctx echo.Context, contentType, filename string) {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, contentType)
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}
