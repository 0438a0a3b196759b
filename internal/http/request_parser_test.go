package http

import (
	"errors"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestParseTransactionRequestAmountForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		// decimal.String trims trailing zeros, so "3.20" renders as "3.2".
		{"string amount", `{"title":"Coffee","amount":"3.20","date":"2024-03-01","type":"expense"}`, "3.2"},
		{"number amount", `{"title":"Coffee","amount":3.20,"date":"2024-03-01","type":"expense"}`, "3.2"},
		{"integer amount", `{"title":"Coffee","amount":3,"date":"2024-03-01","type":"expense"}`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := parseTransactionRequest(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := fields.Amount.String(); got != tt.want {
				t.Fatalf("amount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseTransactionRequestRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"title":`, "body"},
		{"missing amount", `{"title":"x","date":"2024-03-01","type":"expense"}`, "amount"},
		{"null amount", `{"title":"x","amount":null,"date":"2024-03-01","type":"expense"}`, "amount"},
		{"non-numeric amount", `{"title":"x","amount":"12,50","date":"2024-03-01","type":"expense"}`, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTransactionRequest(strings.NewReader(tt.body))
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestParseTransactionRequestSanitizes(t *testing.T) {
	body := `{"title":"  Coffee\u0000 ","amount":"3.20","category":" Food ","date":"2024-03-01","type":"expense"}`
	fields, err := parseTransactionRequest(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fields.Title != "Coffee" {
		t.Fatalf("title = %q", fields.Title)
	}
	if fields.Category != "Food" {
		t.Fatalf("category = %q", fields.Category)
	}
}
