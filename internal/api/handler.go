package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"apteka/m/domain"
	"apteka/m/internal/store"
)

type ctxKey string

const (
	ctxAccountID ctxKey = "accountID"
	ctxKind      ctxKey = "kind"
	ctxAdmin     ctxKey = "admin"
)

const (
	kindEmployee = "employee"
	kindClient   = "client"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	secret string
}

// New constructs a Handler.
func New(st *store.Store, secret string) *Handler {
	return &Handler{store: st, secret: secret}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.loginEmployee)
		r.Post("/client-login", h.loginClient)
		r.Post("/register", h.registerClient)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Get("/{id}", h.getClient)
			r.Put("/{id}", h.updateClient)
			r.Delete("/{id}", h.deleteClient)
			r.Post("/{id}/top-up", h.topUpClient)
		})

		pr.Route("/employees", func(r chi.Router) {
			r.Post("/", h.createEmployee)
			r.Get("/", h.listEmployees)
			r.Get("/{id}", h.getEmployee)
			r.Put("/{id}", h.updateEmployee)
			r.Delete("/{id}", h.deleteEmployee)
			r.Get("/{id}/experience", h.employeeExperience)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Post("/", h.createSupplier)
			r.Get("/", h.listSuppliers)
			r.Get("/{id}", h.getSupplier)
			r.Put("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
			r.Get("/{id}/medicines", h.supplierMedicines)
		})

		pr.Route("/medicines", func(r chi.Router) {
			r.Post("/", h.createMedicine)
			r.Get("/", h.listMedicines)
			r.Get("/expiring", h.medicinesExpiring)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})

		pr.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.Get("/{id}/total", h.orderTotal)
			r.Put("/{id}/status", h.updateOrderStatus)
			r.Delete("/{id}", h.deleteOrder)
		})

		pr.Route("/shipments", func(r chi.Router) {
			r.Post("/", h.receiveShipment)
			r.Get("/", h.listShipments)
			r.Get("/{id}", h.getShipment)
			r.Get("/{id}/verify", h.verifyShipment)
			r.Delete("/{id}", h.deleteShipment)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/orders", h.orderReport)
			r.Get("/suppliers", h.supplierReport)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	AccountID int64  `json:"account_id"`
	Kind      string `json:"kind"`
	Admin     bool   `json:"admin"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(accountID int64, kind string, admin bool) (string, error) {
	claims := authClaims{
		AccountID: accountID,
		Kind:      kind,
		Admin:     admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAccountID, claims.AccountID)
		ctx = context.WithValue(ctx, ctxKind, claims.Kind)
		ctx = context.WithValue(ctx, ctxAdmin, claims.Admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	admin, _ := r.Context().Value(ctxAdmin).(bool)
	if !admin {
		respondError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

func (h *Handler) requireEmployee(w http.ResponseWriter, r *http.Request) bool {
	kind, _ := r.Context().Value(ctxKind).(string)
	if kind != kindEmployee {
		respondError(w, http.StatusForbidden, "employee access required")
		return false
	}
	return true
}

// Auth handlers

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *Handler) loginEmployee(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	employee, err := h.store.AuthenticateEmployee(req.Login, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.generateToken(employee.ID, kindEmployee, employee.IsAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, struct {
		authResponse
		Employee domain.Employee `json:"employee"`
	}{authResponse{Token: token}, employee})
}

func (h *Handler) loginClient(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.store.AuthenticateClient(req.Login, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.generateToken(client.ID, kindClient, false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, struct {
		authResponse
		Client domain.Client `json:"client"`
	}{authResponse{Token: token}, client})
}

type registerClientRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Login     string  `json:"login"`
	Password  string  `json:"password"`
	Balance   float64 `json:"balance"`
}

func (h *Handler) registerClient(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.store.CreateClient(domain.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Login:     req.Login,
		Password:  req.Password,
		Balance:   req.Balance,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}
	id, _ := r.Context().Value(ctxAccountID).(int64)
	kind, _ := r.Context().Value(ctxKind).(string)

	var err error
	switch kind {
	case kindEmployee:
		_, err = h.store.UpdateEmployee(id, store.EmployeeUpdate{Password: &payload.NewPassword})
	case kindClient:
		_, err = h.store.UpdateClient(id, store.ClientUpdate{Password: &payload.NewPassword})
	default:
		respondError(w, http.StatusUnauthorized, "unknown account kind")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Client handlers

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	clients, err := h.store.ListClients()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := h.store.GetClient(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

type clientUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Login     *string `json:"login"`
	Password  *string `json:"password"`
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req clientUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.store.UpdateClient(id, store.ClientUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Login:     req.Login,
		Password:  req.Password,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteClient(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) topUpClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.store.TopUpBalance(id, payload.Amount)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Employee handlers

type employeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Login     string `json:"login"`
	Password  string `json:"password"`
	HiredOn   string `json:"hired_on"`
	IsAdmin   bool   `json:"is_admin"`
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	employee, err := h.store.CreateEmployee(domain.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Position:  req.Position,
		Login:     req.Login,
		Password:  req.Password,
		HiredOn:   req.HiredOn,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, employee)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	employees, err := h.store.ListEmployees()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	employee, err := h.store.GetEmployee(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

type employeeUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Position  *string `json:"position"`
	Login     *string `json:"login"`
	Password  *string `json:"password"`
	HiredOn   *string `json:"hired_on"`
	IsAdmin   *bool   `json:"is_admin"`
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req employeeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	employee, err := h.store.UpdateEmployee(id, store.EmployeeUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Position:  req.Position,
		Login:     req.Login,
		Password:  req.Password,
		HiredOn:   req.HiredOn,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteEmployee(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) employeeExperience(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	years, err := h.store.EmployeeExperience(id, time.Now())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"experience_years": years})
}

// Supplier handlers

type supplierRequest struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	INN         string `json:"inn"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	supplier, err := h.store.CreateSupplier(domain.Supplier{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Phone:       req.Phone,
		INN:         req.INN,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(store.SupplierFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		INN:    strings.TrimSpace(r.URL.Query().Get("inn")),
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	supplier, err := h.store.GetSupplier(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

type supplierUpdateRequest struct {
	CompanyName *string `json:"company_name"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	INN         *string `json:"inn"`
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req supplierUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	supplier, err := h.store.UpdateSupplier(id, store.SupplierUpdate{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Phone:       req.Phone,
		INN:         req.INN,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteSupplier(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) supplierMedicines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	medicines, err := h.store.SupplierMedicines(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

// Medicine handlers

type medicineRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Count       int64   `json:"count"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BestBefore  string  `json:"best_before"`
	SupplierID  *int64  `json:"supplier_id"`
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	medicine, err := h.store.CreateMedicine(domain.Medicine{
		Name:        req.Name,
		Price:       req.Price,
		Count:       req.Count,
		Description: req.Description,
		Category:    req.Category,
		BestBefore:  req.BestBefore,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	var filter store.MedicineFilter
	filter.Category = strings.TrimSpace(r.URL.Query().Get("category"))
	if raw := r.URL.Query().Get("supplier_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid supplier_id")
			return
		}
		filter.SupplierID = id
	}
	medicines, err := h.store.ListMedicines(filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) medicinesExpiring(w http.ResponseWriter, r *http.Request) {
	after := strings.TrimSpace(r.URL.Query().Get("after"))
	if after == "" {
		respondError(w, http.StatusBadRequest, "after query parameter is required")
		return
	}
	medicines, err := h.store.MedicinesExpiringAfter(after)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	medicine, err := h.store.GetMedicine(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

type medicineUpdateRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	BestBefore  *string  `json:"best_before"`
	SupplierID  *int64   `json:"supplier_id"`
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req medicineUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	medicine, err := h.store.UpdateMedicine(id, store.MedicineUpdate{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		BestBefore:  req.BestBefore,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteMedicine(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Order handlers

type orderRequest struct {
	MedicineID   int64  `json:"medicine_id"`
	Quantity     int64  `json:"quantity"`
	RegisteredOn string `json:"registered_on"`
	Status       string `json:"status"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	employeeID, _ := r.Context().Value(ctxAccountID).(int64)
	registeredOn := req.RegisteredOn
	if registeredOn == "" {
		registeredOn = time.Now().Format(domain.DateLayout)
	}
	order, err := h.store.CreateOrder(store.OrderRequest{
		EmployeeID:   employeeID,
		MedicineID:   req.MedicineID,
		Quantity:     req.Quantity,
		RegisteredOn: registeredOn,
		Status:       req.Status,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var filter store.OrderFilter
	q := r.URL.Query()
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid employee_id")
			return
		}
		filter.EmployeeID = id
	}
	if raw := q.Get("medicine_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid medicine_id")
			return
		}
		filter.MedicineID = id
	}
	filter.Status = strings.TrimSpace(q.Get("status"))
	for name, dst := range map[string]*string{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		if _, err := domain.ParseDate(raw); err != nil {
			respondError(w, http.StatusBadRequest, name+" must be in YYYY-MM-DD format")
			return
		}
		*dst = raw
	}
	orders, err := h.store.ListOrders(filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.store.GetOrder(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) orderTotal(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	total, err := h.store.OrderTotal(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"total": total})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.store.UpdateOrderStatus(id, payload.Status)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteOrder(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Shipment handlers

type shipmentItemRequest struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

type shipmentRequest struct {
	SupplierID   int64                 `json:"supplier_id"`
	RegisteredOn string                `json:"registered_on"`
	Status       string                `json:"status"`
	Items        []shipmentItemRequest `json:"items"`
}

func (h *Handler) receiveShipment(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var req shipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	employeeID, _ := r.Context().Value(ctxAccountID).(int64)
	registeredOn := req.RegisteredOn
	if registeredOn == "" {
		registeredOn = time.Now().Format(domain.DateLayout)
	}
	items := make([]store.ShipmentLine, len(req.Items))
	for i, item := range req.Items {
		items[i] = store.ShipmentLine{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	shipment, err := h.store.ReceiveShipment(store.ShipmentRequest{
		SupplierID:   req.SupplierID,
		EmployeeID:   employeeID,
		RegisteredOn: registeredOn,
		Status:       req.Status,
		Items:        items,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shipment)
}

func (h *Handler) listShipments(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	var filter store.ShipmentFilter
	q := r.URL.Query()
	if raw := q.Get("supplier_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid supplier_id")
			return
		}
		filter.SupplierID = id
	}
	for name, dst := range map[string]*string{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		if _, err := domain.ParseDate(raw); err != nil {
			respondError(w, http.StatusBadRequest, name+" must be in YYYY-MM-DD format")
			return
		}
		*dst = raw
	}
	shipments, err := h.store.ListShipments(filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shipments)
}

func (h *Handler) getShipment(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	shipment, err := h.store.GetShipment(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shipment)
}

func (h *Handler) verifyShipment(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	stored, computed, err := h.store.VerifyShipmentTotal(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"stored_total":   stored,
		"computed_total": computed,
		"matches":        stored == computed,
	})
}

func (h *Handler) deleteShipment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteShipment(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reports

func (h *Handler) orderReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	stats, err := h.store.OrderStats()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) supplierReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}
	stats, err := h.store.SupplierStats()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Helpers

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func respondStoreError(w http.ResponseWriter, err error) {
	var (
		validation   *store.ValidationError
		uniqueness   *store.UniquenessError
		insufficient *store.InsufficientStockError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, store.ErrMedicineInUse):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &uniqueness):
		respondError(w, http.StatusConflict, uniqueness.Error())
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
		})
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
