package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lvillar/docsmith/record"
)

func TestLines(t *testing.T) {
	got := Lines("- Website design\n\n  - SEO audit  \nHosting (12 months)\n- \n")
	want := []string{"Website design", "SEO audit", "Hosting (12 months)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
	if Lines("") != nil {
		t.Fatal("empty blob should give no items")
	}
}

func TestSuggest(t *testing.T) {
	var gotDraft string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req struct {
			InvoiceDraft string `json:"invoiceDraft"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		gotDraft = req.InvoiceDraft
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestedItems":"- Logo design\n- Brand guidelines\n"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(0))
	defer c.Close()

	got := c.Suggest(context.Background(), "web agency invoice")
	if !reflect.DeepEqual(got, []string{"Logo design", "Brand guidelines"}) {
		t.Fatalf("Suggest = %q", got)
	}
	if gotDraft != "web agency invoice" {
		t.Fatalf("server saw draft %q", gotDraft)
	}
}

func TestSuggestFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	c := New(srv.URL, WithRetries(0), WithLogger(zap.New(core)))
	defer c.Close()

	if got := c.Suggest(context.Background(), "anything"); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %q", got)
	}
	if got := c.Suggest(context.Background(), "   "); len(got) != 0 {
		t.Fatalf("empty draft gave %q", got)
	}
	if n := logs.FilterMessage("suggestion failed").Len(); n != 2 {
		t.Fatalf("logged %d warnings, want 2", n)
	}
}

func TestSuggestNoEndpoint(t *testing.T) {
	c := New("")
	defer c.Close()
	if got := c.Suggest(context.Background(), "draft"); got != nil {
		t.Fatalf("got %q", got)
	}
	if (Nop{}).Suggest(context.Background(), "draft") != nil {
		t.Fatal("Nop suggested something")
	}
}

func TestDraft(t *testing.T) {
	inv := &record.Invoice{
		CompanyName: "Acme",
		ClientName:  "Globex",
		Items: []record.Item{
			{Name: "Consulting", Quantity: 2, Price: 150},
			{Name: " "},
		},
	}
	want := "From: Acme\nClient: Globex\n- Consulting (qty 2, 150.00)"
	if got := Draft(inv); got != want {
		t.Fatalf("Draft = %q, want %q", got, want)
	}
	if Draft(nil) != "" {
		t.Fatal("nil invoice should give an empty draft")
	}
}
