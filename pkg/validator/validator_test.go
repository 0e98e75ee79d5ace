package validator_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
)

type sampleStruct struct {
	Name     string `validate:"required,min=1,max=10"`
	PageSize int    `validate:"gt=0"`
	Index    int    `validate:"gte=0"`
}

func TestValidate_valid(t *testing.T) {
	s := sampleStruct{Name: "hello", PageSize: 10}
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidate_missingRequired(t *testing.T) {
	s := sampleStruct{PageSize: 1}
	if err := pkgvalidator.Validate(&s); err == nil {
		t.Fatal("expected validation error for empty name")
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input sampleStruct
		field string
		want  string
	}{
		{"required", sampleStruct{PageSize: 1}, "Name", "This field is required"},
		{"max", sampleStruct{Name: strings.Repeat("x", 11), PageSize: 1}, "Name", "Maximum length is 10"},
		{"gt", sampleStruct{Name: "ok", PageSize: 0}, "PageSize", "Must be greater than 0"},
		{"gte", sampleStruct{Name: "ok", PageSize: 1, Index: -1}, "Index", "Must be greater than or equal to 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&tt.input))
			if m[tt.field] != tt.want {
				t.Errorf("%s: got %q, want %q", tt.field, m[tt.field], tt.want)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(errors.New("plain error"))
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

type priced struct {
	Price decimal.Decimal `json:"price" validate:"gte=0,lte=99.999"`
}

func TestValidate_decimalBounds(t *testing.T) {
	tests := []struct {
		price   string
		wantErr bool
	}{
		{"0", false},
		{"99.999", false},
		{"100", true},
		{"-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			err := pkgvalidator.Validate(&priced{Price: decimal.RequireFromString(tt.price)})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(price=%s) error = %v, wantErr = %v", tt.price, err, tt.wantErr)
			}
		})
	}
}

type itemReq struct {
	Name         string          `json:"name"         validate:"required,max=50"`
	CatalogBrand string          `json:"catalogBrand" validate:"required,max=100"`
	Price        decimal.Decimal `json:"price"        validate:"gte=0"`
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"name":"Widget","catalogBrand":"Acme","price":"9.99"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[itemReq](w, r)
	if !ok {
		t.Fatalf("expected ok=true, got false. Response: %s", w.Body.String())
	}
	if req.Name != "Widget" || !req.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestValidateRequest_numericPrice(t *testing.T) {
	body := `{"name":"Widget","catalogBrand":"Acme","price":9.99}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	if _, ok := pkgvalidator.ValidateRequest[itemReq](w, r); !ok {
		t.Fatalf("expected unquoted price to decode. Response: %s", w.Body.String())
	}
}

func TestValidateRequest_invalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad json"))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[itemReq](w, r)
	if ok {
		t.Fatal("expected ok=false for malformed JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid JSON") {
		t.Errorf("expected 'Invalid JSON' in body, got: %s", w.Body.String())
	}
}

func TestValidateRequest_missingField(t *testing.T) {
	body := `{"name":"Widget"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[itemReq](w, r)
	if ok {
		t.Fatal("expected ok=false for missing catalogBrand")
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "catalogBrand") {
		t.Errorf("expected catalogBrand in details, got: %s", w.Body.String())
	}
}

func TestValidateRequest_bodyTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", 100) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	h := httpx.RequestBodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkgvalidator.ValidateRequest[itemReq](w, r)
	}))
	h.ServeHTTP(w, r)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
