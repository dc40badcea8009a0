package lipana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPushSTK(t *testing.T) {
	var gotBody struct {
		Phone  string  `json:"phone"`
		Amount float64 `json:"amount"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transactions/push-stk" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"message":"accepted","data":{"transactionId":"TX-1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	resp, err := c.PushSTK(context.Background(), "254700000001", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("PushSTK: %v", err)
	}
	if resp.Reference() != "TX-1" {
		t.Fatalf("reference = %q, want TX-1", resp.Reference())
	}
	if gotBody.Phone != "254700000001" || gotBody.Amount != 500 {
		t.Fatalf("request body = %+v", gotBody)
	}
	if !strings.Contains(string(resp.Raw), "TX-1") {
		t.Fatal("raw payload not preserved")
	}
}

func TestPushSTKSnakeCaseReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"transaction_id":"TX-2"}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "k").PushSTK(context.Background(), "254700000001", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PushSTK: %v", err)
	}
	if resp.Reference() != "TX-2" {
		t.Fatalf("reference = %q, want TX-2", resp.Reference())
	}
}

func TestPushSTKSurfacesRailMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"insufficient float"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").PushSTK(context.Background(), "254700000001", decimal.NewFromInt(100))
	if err == nil || !strings.Contains(err.Error(), "insufficient float") {
		t.Fatalf("err = %v, want rail message surfaced", err)
	}
}
