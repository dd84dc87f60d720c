package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"apteka/m/domain"
	"apteka/m/internal/database"
	"apteka/m/internal/migrations"
	"apteka/m/internal/security"
	"apteka/m/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	st := store.New(db, security.NewHasherWithIterations(1000))
	srv := httptest.NewServer(New(st, "test_secret").Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func loginEmployee(t *testing.T, srv *httptest.Server, st *store.Store, login string, admin bool) string {
	t.Helper()
	if _, err := st.CreateEmployee(domain.Employee{
		FirstName: "Anna", LastName: "Petrova", Phone: "123",
		Position: "pharmacist", Login: login, Password: "secret",
		HiredOn: "2020-03-15", IsAdmin: admin,
	}); err != nil {
		t.Fatalf("create employee: %v", err)
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"login": login, "password": "secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" {
		t.Fatalf("empty token")
	}
	return body.Token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/medicines", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, st := newTestServer(t)
	loginEmployee(t, srv, st, "anna", false)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"login": "anna", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestOrderFlow(t *testing.T) {
	srv, st := newTestServer(t)
	token := loginEmployee(t, srv, st, "anna", false)

	med, err := st.CreateMedicine(domain.Medicine{Name: "Aspirin", Price: 10, Count: 5})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", token, map[string]any{
		"medicine_id": med.ID, "quantity": 3, "status": "completed",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order status = %d", resp.StatusCode)
	}
	var order domain.Order
	decodeBody(t, resp, &order)
	if order.Quantity != 3 {
		t.Fatalf("order = %+v", order)
	}

	after, err := st.GetMedicine(med.ID)
	if err != nil {
		t.Fatalf("get medicine: %v", err)
	}
	if after.Count != 2 {
		t.Fatalf("count = %d, want 2", after.Count)
	}

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/orders/%d/total", srv.URL, order.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order total status = %d", resp.StatusCode)
	}
	var total struct {
		Total float64 `json:"total"`
	}
	decodeBody(t, resp, &total)
	if total.Total != 30 {
		t.Fatalf("total = %v, want 30", total.Total)
	}
}

func TestOrderInsufficientStock(t *testing.T) {
	srv, st := newTestServer(t)
	token := loginEmployee(t, srv, st, "anna", false)

	med, err := st.CreateMedicine(domain.Medicine{Name: "Aspirin", Price: 10, Count: 5})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", token, map[string]any{
		"medicine_id": med.ID, "quantity": 10, "status": "completed",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	var body struct {
		Available int64 `json:"available"`
	}
	decodeBody(t, resp, &body)
	if body.Available != 5 {
		t.Fatalf("available = %d, want 5", body.Available)
	}
}

func TestShipmentEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	token := loginEmployee(t, srv, st, "anna", false)

	sup, err := st.CreateSupplier(domain.Supplier{CompanyName: "PharmCo", Address: "a", Phone: "123", INN: "1234567890"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	a, err := st.CreateMedicine(domain.Medicine{Name: "Aspirin", Price: 10})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	b, err := st.CreateMedicine(domain.Medicine{Name: "Ibuprofen", Price: 20})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/shipments", token, map[string]any{
		"supplier_id": sup.ID,
		"status":      "received",
		"items": []map[string]any{
			{"medicine_id": a.ID, "quantity": 3},
			{"medicine_id": b.ID, "quantity": 2},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var shipment domain.Shipment
	decodeBody(t, resp, &shipment)
	if shipment.TotalPrice != 70 {
		t.Fatalf("total = %v, want 70", shipment.TotalPrice)
	}
	if len(shipment.Items) != 2 {
		t.Fatalf("items = %+v", shipment.Items)
	}
}

func TestAdminGating(t *testing.T) {
	srv, st := newTestServer(t)
	employeeToken := loginEmployee(t, srv, st, "anna", false)
	adminToken := loginEmployee(t, srv, st, "boss", true)

	payload := map[string]any{
		"first_name": "New", "last_name": "Hire", "phone": "1",
		"position": "cashier", "login": "hire", "password": "pw",
		"hired_on": "2026-01-01",
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/employees", employeeToken, payload)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/employees", adminToken, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin status = %d, want 201", resp.StatusCode)
	}
}

func TestClientRegisterAndTopUp(t *testing.T) {
	srv, st := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]any{
		"first_name": "Ivan", "last_name": "Ivanov", "phone": "123",
		"login": "ivan", "password": "pw123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var client domain.Client
	decodeBody(t, resp, &client)

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/client-login", "", map[string]string{
		"login": "ivan", "password": "pw123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("client login status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/clients/%d/top-up", srv.URL, client.ID), body.Token, map[string]float64{
		"amount": 100,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("top-up status = %d", resp.StatusCode)
	}
	updated, err := st.GetClient(client.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if updated.Balance != 100 {
		t.Fatalf("balance = %v, want 100", updated.Balance)
	}
}
