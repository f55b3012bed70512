package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finanzas/internal/services"
	"finanzas/internal/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := memory.New()
	srv := NewServer("127.0.0.1:0", st,
		services.NewAccountService(st),
		services.NewLedgerService(st),
		services.NewSummaryService(st))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, owner, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func currentMonthKey() string {
	return time.Now().Format("2006-01")
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/accounts", "/transactions", "/summary", "/budgets", "/goals", "/lists", "/events", "/export/csv"} {
		resp, _ := doJSON(t, ts, http.MethodGet, path, "", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without session = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestHealthEndpointsNeedNoSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, ts, http.MethodGet, path, "", "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestListAccountsSeedsDefaults(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /accounts = %d, body %s", resp.StatusCode, body)
	}

	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("seeded accounts = %d, want 3", len(accounts))
	}
	names := map[string]bool{}
	for _, a := range accounts {
		names[a.Name] = true
	}
	for _, want := range []string{"Efectivo", "Débito", "Tarjeta de crédito"} {
		if !names[want] {
			t.Errorf("missing default account %q", want)
		}
	}
}

func TestCreateTransactionUpdatesBalance(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	accountID := accounts[0].ID

	payload := fmt.Sprintf(`{"date":"2025-03-05","description":"Mercado","category_id":"food","account_id":"%s","amount":"123.45","kind":"expense"}`, accountID)
	resp, body := doJSON(t, ts, http.MethodPost, "/transactions", "user-1", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /transactions = %d, body %s", resp.StatusCode, body)
	}
	var created transactionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if created.AmountCents != 12345 {
		t.Errorf("amount cents = %d, want 12345", created.AmountCents)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	for _, a := range accounts {
		if a.ID == accountID && a.BalanceCents != -12345 {
			t.Errorf("balance after expense = %d, want -12345", a.BalanceCents)
		}
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	accountID := accounts[0].ID

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{
			name:    "zero amount",
			payload: fmt.Sprintf(`{"date":"2025-03-05","description":"x","category_id":"food","account_id":"%s","amount":"0","kind":"expense"}`, accountID),
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "empty description",
			payload: fmt.Sprintf(`{"date":"2025-03-05","description":"  ","category_id":"food","account_id":"%s","amount":"10","kind":"expense"}`, accountID),
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "transfer to same account",
			payload: fmt.Sprintf(`{"date":"2025-03-05","description":"move","category_id":"other","account_id":"%s","destination_id":"%s","amount":"10","kind":"transfer"}`, accountID, accountID),
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "malformed JSON",
			payload: `{"date":`,
			want:    http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, ts, http.MethodPost, "/transactions", "user-1", tt.payload)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestSummaryAndBudgetAlert(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	accountID := accounts[0].ID

	// Spend 450.00 of a 500.00 budget in the current month.
	month := currentMonthKey()
	payload := fmt.Sprintf(`{"category_id":"food","month":"%s","target":"500.00"}`, month)
	if resp, body := doJSON(t, ts, http.MethodPut, "/budgets", "user-1", payload); resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /budgets = %d, body %s", resp.StatusCode, body)
	}

	payload = fmt.Sprintf(`{"date":"%s-10","description":"Mercado","category_id":"food","account_id":"%s","amount":"450.00","kind":"expense"}`, month, accountID)
	if resp, body := doJSON(t, ts, http.MethodPost, "/transactions", "user-1", payload); resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /transactions = %d, body %s", resp.StatusCode, body)
	}

	resp, body := doJSON(t, ts, http.MethodGet, "/summary", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /summary = %d, body %s", resp.StatusCode, body)
	}
	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Totals.Expense.Cents != 45000 {
		t.Errorf("expense total = %d, want 45000", summary.Totals.Expense.Cents)
	}
	if len(summary.Budgets) != 1 {
		t.Fatalf("budget statuses = %+v, want one", summary.Budgets)
	}
	if summary.Budgets[0].Percent != 90 || !summary.Budgets[0].Alert {
		t.Errorf("budget status = %+v, want 90%% alert", summary.Budgets[0])
	}
}

func TestExportCSVHeader(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/export/csv", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /export/csv = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	if !strings.HasPrefix(string(body), "Fecha,Descripción,Categoría,Cuenta,Tipo,Valor") {
		t.Errorf("export header = %q", string(body))
	}
}

func TestShoppingListLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/lists", "user-1", `{"name":"Supermercado"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /lists = %d, body %s", resp.StatusCode, body)
	}
	var created shoppingListResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode list: %v", err)
	}

	itemPayload := `{"name":"Leche","quantity":2}`
	resp, body = doJSON(t, ts, http.MethodPost, "/lists/"+created.ID+"/items", "user-1", itemPayload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST items = %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, ts, http.MethodGet, "/lists/"+created.ID+"/items", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET items = %d", resp.StatusCode)
	}
	var items []shoppingItemResponse
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Leche" || items[0].Quantity != 2 {
		t.Errorf("items = %+v", items)
	}

	if resp, _ := doJSON(t, ts, http.MethodDelete, "/lists/"+created.ID, "user-1", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE /lists = %d, want 204", resp.StatusCode)
	}
}

// Reusing another owner's transaction id must not overwrite their row, and
// must not leave a balance change behind on the caller's accounts.
func TestUpsertByForeignIDRejected(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodGet, "/accounts", "user-1", "")
	var accounts []accountResponse
	if err := json.Unmarshal(body, &accounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	payload := fmt.Sprintf(`{"date":"2025-03-05","description":"Mercado","category_id":"food","account_id":"%s","amount":"100.00","kind":"expense"}`, accounts[0].ID)
	resp, body := doJSON(t, ts, http.MethodPost, "/transactions", "user-1", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /transactions = %d, body %s", resp.StatusCode, body)
	}
	var created transactionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/accounts", "user-2", "")
	var otherAccounts []accountResponse
	if err := json.Unmarshal(body, &otherAccounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	payload = fmt.Sprintf(`{"date":"2025-03-06","description":"Robo","category_id":"other","account_id":"%s","amount":"20.00","kind":"expense"}`, otherAccounts[0].ID)
	resp, body = doJSON(t, ts, http.MethodPut, "/transactions/"+created.ID, "user-2", payload)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("PUT foreign transaction id = %d, want 404 (body %s)", resp.StatusCode, body)
	}

	// The victim's row is untouched.
	_, body = doJSON(t, ts, http.MethodGet, "/transactions", "user-1", "")
	var txs []transactionResponse
	if err := json.Unmarshal(body, &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Description != "Mercado" || txs[0].AmountCents != 10000 {
		t.Errorf("victim transaction changed: %+v", txs)
	}

	// The caller's balances are untouched: no balance change without a row.
	_, body = doJSON(t, ts, http.MethodGet, "/accounts", "user-2", "")
	if err := json.Unmarshal(body, &otherAccounts); err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	for _, a := range otherAccounts {
		if a.BalanceCents != 0 {
			t.Errorf("account %s balance = %d, want 0", a.Name, a.BalanceCents)
		}
	}
}

func TestShoppingItemRequiresOwnedList(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/lists", "user-1", `{"name":"Supermercado"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /lists = %d, body %s", resp.StatusCode, body)
	}
	var created shoppingListResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode list: %v", err)
	}

	if resp, _ := doJSON(t, ts, http.MethodPost, "/lists/no-such-list/items", "user-1", `{"name":"Pan"}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("POST item to missing list = %d, want 404", resp.StatusCode)
	}
	if resp, _ := doJSON(t, ts, http.MethodPost, "/lists/"+created.ID+"/items", "user-2", `{"name":"Pan"}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("POST item to foreign list = %d, want 404", resp.StatusCode)
	}

	resp, body = doJSON(t, ts, http.MethodGet, "/lists/"+created.ID+"/items", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET items = %d", resp.StatusCode)
	}
	var items []shoppingItemResponse
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("rejected writes left items behind: %+v", items)
	}
}

func TestOwnerIsolation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/events", "user-1", `{"title":"Pagar alquiler","date":"2025-04-01"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /events = %d, body %s", resp.StatusCode, body)
	}
	var created eventResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	// Another user cannot see or delete it.
	resp, body = doJSON(t, ts, http.MethodGet, "/events", "user-2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /events as other user = %d", resp.StatusCode)
	}
	var events []eventResponse
	if err := json.Unmarshal(body, &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("foreign events visible: %+v", events)
	}
	if resp, _ := doJSON(t, ts, http.MethodDelete, "/events/"+created.ID, "user-2", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("DELETE foreign event = %d, want 404", resp.StatusCode)
	}
}
