package handler

import (
	"net/http"
	"testing"

	registrarapp "github.com/alfred/backend/internal/application/registrar"
	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func domainRouter(userID uuid.UUID, svc *mockRegistrarService) *gin.Engine {
	h := NewDomainHandler(svc)
	router := testRouter(userID)
	router.GET("/domains/check", h.Check)
	router.GET("/domains/suggest", h.Suggest)
	router.POST("/domains/checkout", h.Checkout)
	router.POST("/domains/purchases/:id/confirm", h.Confirm)
	router.GET("/domains/purchases", h.ListPurchases)
	return router
}

func TestDomainHandler_Check(t *testing.T) {
	svc := new(mockRegistrarService)
	svc.On("Check", mock.Anything, "alfred.dev").Return(&registrarapp.QuoteDTO{
		Domain: "alfred.dev", Available: true, Price: decimal.RequireFromString("14.99"), Currency: "USD", Period: 1,
	}, nil)
	svc.On("Check", mock.Anything, "bad..name").Return(nil, registrar.ErrInvalidDomain)
	router := domainRouter(uuid.Nil, svc)

	w := doRequest(router, http.MethodGet, "/domains/check?name=alfred.dev", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":"14.99"`)

	w = doRequest(router, http.MethodGet, "/domains/check", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/domains/check?name=bad..name", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_DOMAIN", errorCode(t, w))
}

func TestDomainHandler_Suggest(t *testing.T) {
	svc := new(mockRegistrarService)
	svc.On("Suggest", mock.Anything, "coffee").Return(nil, nil)
	router := domainRouter(uuid.Nil, svc)

	w := doRequest(router, http.MethodGet, "/domains/suggest?q=coffee", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(dataField(t, w)))

	w = doRequest(router, http.MethodGet, "/domains/suggest", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDomainHandler_Checkout(t *testing.T) {
	userID := uuid.New()
	input := registrarapp.CheckoutInput{Domain: "alfred.dev"}

	t.Run("created", func(t *testing.T) {
		svc := new(mockRegistrarService)
		svc.On("Checkout", mock.Anything, userID, input).Return(&registrarapp.CheckoutDTO{
			PurchaseID: uuid.New(), SessionID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1",
		}, nil)

		w := doRequest(domainRouter(userID, svc), http.MethodPost, "/domains/checkout", input)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "cs_test_1")
	})

	t.Run("taken", func(t *testing.T) {
		svc := new(mockRegistrarService)
		svc.On("Checkout", mock.Anything, userID, input).Return(nil, registrar.ErrDomainUnavailable)

		w := doRequest(domainRouter(userID, svc), http.MethodPost, "/domains/checkout", input)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := new(mockRegistrarService)
		w := doRequest(domainRouter(uuid.Nil, svc), http.MethodPost, "/domains/checkout", input)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDomainHandler_Confirm(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	path := "/domains/purchases/" + id.String() + "/confirm"

	t.Run("unpaid", func(t *testing.T) {
		svc := new(mockRegistrarService)
		svc.On("Confirm", mock.Anything, userID, id).Return(nil, registrar.ErrPaymentIncomplete)

		w := doRequest(domainRouter(userID, svc), http.MethodPost, path, nil)
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
	})

	t.Run("registered", func(t *testing.T) {
		svc := new(mockRegistrarService)
		svc.On("Confirm", mock.Anything, userID, id).Return(&registrarapp.PurchaseDTO{ID: id, Domain: "alfred.dev", Status: "registered"}, nil)

		w := doRequest(domainRouter(userID, svc), http.MethodPost, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"registered"`)
	})
}

func TestDomainHandler_ListPurchases(t *testing.T) {
	userID := uuid.New()
	svc := new(mockRegistrarService)
	svc.On("List", mock.Anything, userID).Return([]registrarapp.PurchaseDTO{{Domain: "alfred.dev"}}, nil)

	w := doRequest(domainRouter(userID, svc), http.MethodGet, "/domains/purchases", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alfred.dev")
}
