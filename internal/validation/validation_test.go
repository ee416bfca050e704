package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/errs"
)

type lookupRequest struct {
	ID    string `param:"id" validate:"required,len=4"`
	Email string `query:"email" validate:"omitempty,max=10"`
}

func (r *lookupRequest) Validate() error {
	return Struct(r)
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (r *amountRequest) Validate() error {
	if r.Amount == 13 {
		return CustomValidationErrors{{Field: "amount", Message: "is unlucky"}}
	}
	return nil
}

func newContext(method, target, body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidateParamsAndQuery(t *testing.T) {
	c := newContext(http.MethodGet, "/parcels/abcd?email=a@x.com", "")
	c.SetParamNames("id")
	c.SetParamValues("abcd")

	req := &lookupRequest{}
	if err := BindAndValidate(c, req); err != nil {
		t.Fatalf("BindAndValidate() error = %v", err)
	}
	if req.ID != "abcd" || req.Email != "a@x.com" {
		t.Errorf("bound = %+v", req)
	}
}

func TestBindAndValidateTagErrors(t *testing.T) {
	c := newContext(http.MethodGet, "/parcels/abc?email=toolong@example.com", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := BindAndValidate(c, &lookupRequest{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest || len(httpErr.Errors) != 2 {
		t.Fatalf("error = %+v", httpErr)
	}
	if httpErr.Errors[0].Field != "id" || httpErr.Errors[0].Error != "must be 4 characters long" {
		t.Errorf("errors[0] = %+v", httpErr.Errors[0])
	}
	if httpErr.Errors[1].Field != "email" || httpErr.Errors[1].Error != "must not exceed 10 characters" {
		t.Errorf("errors[1] = %+v", httpErr.Errors[1])
	}
}

func TestBindAndValidateCustomErrors(t *testing.T) {
	c := newContext(http.MethodPost, "/pay", `{"amount":13}`)

	err := BindAndValidate(c, &amountRequest{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || len(httpErr.Errors) != 1 || httpErr.Errors[0].Error != "is unlucky" {
		t.Fatalf("error = %#v", err)
	}
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	c := newContext(http.MethodPost, "/pay", `{"amount":`)

	err := BindAndValidate(c, &amountRequest{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400 HTTPError", err)
	}
	if !strings.HasPrefix(httpErr.Message, "Syntax error") && !strings.Contains(httpErr.Message, "EOF") {
		t.Errorf("message = %q", httpErr.Message)
	}
}

func TestBindAndValidateUnsupportedMediaType(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader("amount=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	c := e.NewContext(req, httptest.NewRecorder())

	err := BindAndValidate(c, &amountRequest{})

	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) || echoErr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("error = %v, want 415", err)
	}
}
