package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/app/controllers"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/repositories/memory"
	"github.com/yigit/campusprint/internal/app/routes"
	"github.com/yigit/campusprint/internal/app/services"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/middleware"
	"github.com/yigit/campusprint/internal/pkg/auth"
	"github.com/yigit/campusprint/internal/pkg/filestorage"
)

const maxUpload = 4 << 10

type api struct {
	t      *testing.T
	router *gin.Engine
	users  *memory.UserRepository
}

func newAPI(t *testing.T, authLimit gin.HandlerFunc) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users, requests, tokens := memory.NewStore().Repositories()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), maxUpload)
	require.NoError(t, err)
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "controller-test",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "campusprint.test",
	})

	log := zerolog.Nop()
	authSvc := services.NewAuthService(users, tokens, jwt, log).WithHashCost(4)
	printSvc := services.NewPrintRequestService(requests, storage, log)
	adminSvc := services.NewAdminService(requests, log)

	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Auth:         controllers.NewAuthController(authSvc, log),
		PrintRequest: controllers.NewPrintRequestController(printSvc, maxUpload, log),
		Admin:        controllers.NewAdminController(adminSvc, printSvc, log),
		Health:       controllers.NewHealthController(nil),
	}, middleware.NewAuthMiddleware(jwt), authLimit)

	return &api{t: t, router: router, users: users}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) upload(token, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(a.t, err)
		_, err = part.Write(content)
		require.NoError(a.t, err)
	}
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// data decodes the data member of an APIResponse into out
func data(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func (a *api) registerAndLogin(name string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Username: name, Email: name + "@campus.edu", Password: "password123", ConfirmPassword: "password123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(name+"@campus.edu", "password123")
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuthResponse
	data(a.t, w, &resp)
	return resp.Token.AccessToken
}

func (a *api) adminToken() string {
	a.t.Helper()
	hash, err := auth.HashPasswordWithCost("admin-pass", 4)
	require.NoError(a.t, err)
	require.NoError(a.t, a.users.Create(context.Background(), &models.User{
		Username: "admin", Email: "admin@campus.edu", Password: hash, Role: domain.RoleAdmin,
	}))
	return a.login("admin@campus.edu", "admin-pass")
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Username: "alice", Email: "Alice@Campus.edu", Password: "password123", ConfirmPassword: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg dto.RegisterResponse
	data(t, w, &reg)
	assert.Equal(t, controllers.RegistrationSuccessMessage, reg.Message)
	assert.Equal(t, "alice@campus.edu", reg.User.Email)
	assert.Equal(t, "student", reg.User.Role)

	w = a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Username: "alice2", Email: "alice@campus.edu", Password: "password123", ConfirmPassword: "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, errorCode(t, w))

	w = a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Username: "bob", Email: "bob@campus.edu", Password: "password123", ConfirmPassword: "different1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "alice@campus.edu", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, errorCode(t, w))

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "alice@campus.edu", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.AuthResponse
	data(t, w, &login)
	assert.Equal(t, services.RedirectStudent, login.RedirectTo)
	assert.NotEmpty(t, login.Token.AccessToken)

	w = a.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: login.Token.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: login.Token.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a rotated refresh token cannot be reused")
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	a := newAPI(t, nil)
	w := a.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@campus.edu","password":"x","remember":true}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidRequest, errorCode(t, w))
}

func TestCalculatePrice(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodPost, "/api/v1/calculate-price", "", dto.PriceRequest{PrintType: "bw"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := a.registerAndLogin("carol")

	w = a.do(http.MethodPost, "/api/v1/calculate-price", token, `{"printType":"color","copies":2,"pages":3,"doubleSided":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote dto.PriceResponse
	data(t, w, &quote)
	assert.Equal(t, dto.PriceResponse{TotalPages: 3, PageCost: 20, TotalCost: 60}, quote)

	w = a.do(http.MethodPost, "/api/v1/calculate-price", token, `{"printType":"bw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &quote)
	assert.Equal(t, int64(5), quote.TotalCost, "copies and pages default to 1")

	w = a.do(http.MethodPost, "/api/v1/calculate-price", token, `{"printType":"sepia"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))

	w = a.do(http.MethodPost, "/api/calculate_price", token, `{"print_type":"bw","copies":1,"pages":5,"double_sided":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"total_pages":5,"page_cost":5,"total_cost":25}`, w.Body.String())
}

func TestUploadFlow(t *testing.T) {
	a := newAPI(t, nil)
	token := a.registerAndLogin("dave")
	pdf := []byte("%PDF-1.4 test document")

	w := a.upload(token, "thesis.pdf", pdf, map[string]string{
		"printType": "bw", "copies": "2", "pages": "10", "doubleSided": "true", "binding": "spiral",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted dto.SubmitResponse
	data(t, w, &submitted)
	assert.Equal(t, int64(50), submitted.Request.TotalCost)
	assert.Equal(t, "pending", submitted.Request.Status)
	assert.Equal(t, "thesis.pdf", submitted.Request.OriginalFilename)
	assert.Equal(t, "Print request submitted successfully! Total cost: 50", submitted.Message)

	w = a.upload(token, "notes.txt", []byte("plain"), map[string]string{"printType": "bw"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidFileType, errorCode(t, w))

	w = a.upload(token, "", nil, map[string]string{"printType": "bw"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.upload(token, "big.pdf", bytes.Repeat([]byte("x"), maxUpload+1), map[string]string{"printType": "bw"})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrorCodeFileTooLarge, errorCode(t, w))

	w = a.upload(token, "thesis.pdf", pdf, map[string]string{"printType": "bw", "copies": "0"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile dto.ProfileResponse
	data(t, w, &profile)
	assert.Equal(t, int64(1), profile.Stats.TotalRequests)
	assert.Equal(t, int64(50), profile.Stats.TotalSpent)
	require.Len(t, profile.Requests, 1)

	w = a.do(http.MethodGet, "/api/v1/upload", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var form dto.UploadFormResponse
	data(t, w, &form)
	assert.Empty(t, form.Requests)
	assert.Equal(t, int64(maxUpload), form.MaxUploadBytes)

	w = a.do(http.MethodGet, "/api/v1/upload", token, nil)
	data(t, w, &form)
	assert.Len(t, form.Requests, 1)
}

func TestAdminStatusUpdates(t *testing.T) {
	a := newAPI(t, nil)
	student := a.registerAndLogin("erin")
	admin := a.adminToken()

	w := a.upload(student, "lab.docx", []byte("docx"), map[string]string{"printType": "color"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted dto.SubmitResponse
	data(t, w, &submitted)
	id := submitted.Request.ID

	w = a.do(http.MethodGet, "/api/v1/admin", student, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/v1/update-request-status", student, dto.UpdateStatusRequest{RequestID: id, Status: "printing"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/v1/update-request-status", admin, dto.UpdateStatusRequest{RequestID: id, Status: "printing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.UpdateStatusResponse
	data(t, w, &updated)
	assert.True(t, updated.Success)
	assert.Equal(t, "printing", updated.Status)

	w = a.do(http.MethodPost, "/api/v1/update-request-status", admin, dto.UpdateStatusRequest{RequestID: id, Status: "pending"})
	require.Equal(t, http.StatusBadRequest, w.Code, "status never moves backwards")

	w = a.do(http.MethodPost, "/api/v1/update-request-status", admin, dto.UpdateStatusRequest{RequestID: 999, Status: "printing"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/update_request_status", admin, fmt.Sprintf(`{"request_id":%d,"status":"completed"}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = a.do(http.MethodGet, "/api/v1/admin?status=completed", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash dto.DashboardResponse
	data(t, w, &dash)
	assert.Equal(t, dto.DashboardStats{Total: 1, Completed: 1}, dash.Stats)
	require.Len(t, dash.Requests, 1)
	assert.Equal(t, "erin", dash.Requests[0].Username)

	w = a.do(http.MethodGet, "/api/v1/admin?status=lost", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpointsAreRateLimited(t *testing.T) {
	limit := middleware.RateLimit(middleware.NewLocalLimiter(0.001, 2), nil, "rl", zerolog.Nop())
	a := newAPI(t, limit)

	body := dto.LoginRequest{Email: "nobody@campus.edu", Password: "password123"}
	for i := 0; i < 2; i++ {
		w := a.do(http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := a.do(http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHealth(t *testing.T) {
	a := newAPI(t, nil)
	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"status":"ok"`))
}
