package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/errorspkg"
	"github.com/deskbank/deskbank/pkg/randompkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("accounttype", ValidAccountType); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

var compareOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.EquateApproxTime(time.Second),
}

func randomAccount(userID int64) domain.Account {
	return domain.Account{
		ID:           1,
		UserID:       userID,
		Number:       randompkg.AccountNumber(),
		Type:         domain.Savings,
		Balance:      randompkg.MoneyAmountBetween(100, 1000),
		InterestRate: decimal.RequireFromString("3.5"),
		Status:       domain.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateAPI(t *testing.T) {
	account := randomAccount(1)

	type requestBody struct {
		UserID         int64  `json:"user_id"`
		Type           string `json:"type"`
		InitialDeposit string `json:"initial_deposit"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: requestBody{UserID: 1, Type: "savings", InitialDeposit: "100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("savings"), gomock.Eq("100.00")).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "UnsupportedType",
			requestBody: requestBody{UserID: 1, Type: "premium", InitialDeposit: "100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Type is not a supported account type",
		},
		{
			name:        "MissingUserID",
			requestBody: requestBody{Type: "savings", InitialDeposit: "100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "UserID is required",
		},
		{
			name:        "InvalidInitialDeposit",
			requestBody: requestBody{UserID: 1, Type: "savings", InitialDeposit: "-100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("savings"), gomock.Eq("-100.00")).
					Times(1).
					Return(domain.Account{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name:        "NumberTaken",
			requestBody: requestBody{UserID: 1, Type: "savings", InitialDeposit: "100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNumberTaken)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrAccountNumberTaken.Error(),
		},
		{
			name:        "InternalError",
			requestBody: requestBody{UserID: 1, Type: "savings", InitialDeposit: "100.00"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.POST("/accounts", handler.Create)

			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res struct {
				Data  data   `json:"data"`
				Error string `json:"error"`
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else if diff := cmp.Diff(account, res.Data.Account, compareOpts); diff != "" {
				t.Errorf("res.Data.Account mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetAPI(t *testing.T) {
	account := randomAccount(1)

	testCases := []struct {
		name           string
		accountID      string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:      "OK",
			accountID: "1",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(int64(1))).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "InvalidID",
			accountID: "-1",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be at least 1",
		},
		{
			name:      "NotFound",
			accountID: "1",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(int64(1))).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts/:id", handler.Get)

			tc.buildStubs(service)

			url := fmt.Sprintf("/accounts/%s", tc.accountID)
			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res struct {
				Data  data   `json:"data"`
				Error string `json:"error"`
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else if diff := cmp.Diff(account, res.Data.Account, compareOpts); diff != "" {
				t.Errorf("res.Data.Account mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetByNumberAPI(t *testing.T) {
	account := randomAccount(1)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	handler := NewHandler(service)

	server := gin.New()
	server.GET("/accounts/number/:number", handler.GetByNumber)

	service.EXPECT().
		GetByNumber(gomock.Any(), gomock.Eq(account.Number)).
		Times(1).
		Return(account, nil)

	url := fmt.Sprintf("/accounts/number/%s", account.Number)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if got := recorder.Code; got != http.StatusOK {
		t.Errorf("Status code: got %v, want %v", got, http.StatusOK)
	}

	var res struct {
		Data data `json:"data"`
	}

	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	if diff := cmp.Diff(account, res.Data.Account, compareOpts); diff != "" {
		t.Errorf("res.Data.Account mismatch (-want +got):\n%s", diff)
	}
}

func TestListAPI(t *testing.T) {
	accounts := []domain.Account{randomAccount(1), randomAccount(1)}
	accounts[1].ID = 2
	accounts[1].Type = domain.Checking

	total := accounts[0].Balance.Add(accounts[1].Balance)

	testCases := []struct {
		name           string
		url            string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			url:  "/accounts?user_id=1",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int64(1))).
					Times(1).
					Return(accounts, nil)

				service.EXPECT().
					TotalBalance(gomock.Any(), gomock.Eq(int64(1))).
					Times(1).
					Return(total, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingUserID",
			url:  "/accounts",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
				service.EXPECT().TotalBalance(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "UserID is required",
		},
		{
			name: "StoreUnavailable",
			url:  "/accounts?user_id=1",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int64(1))).
					Times(1).
					Return(nil, domain.ErrStoreUnavailable)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      domain.ErrStoreUnavailable.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts", handler.List)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res struct {
				Data  dataAccounts `json:"data"`
				Error string       `json:"error"`
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
				return
			}

			if diff := cmp.Diff(accounts, res.Data.Accounts, compareOpts); diff != "" {
				t.Errorf("res.Data.Accounts mismatch (-want +got):\n%s", diff)
			}

			if !res.Data.TotalBalance.Equal(total) {
				t.Errorf("res.Data.TotalBalance=%v, want %v", res.Data.TotalBalance, total)
			}
		})
	}
}

func TestSetStatusAPI(t *testing.T) {
	frozen := randomAccount(1)
	frozen.Status = domain.StatusFrozen

	type requestBody struct {
		Status string `json:"status"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: requestBody{Status: "frozen"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("frozen")).
					Times(1).
					Return(frozen, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "MissingStatus",
			requestBody: requestBody{},
			buildStubs: func(service *MockService) {
				service.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Status is required",
		},
		{
			name:        "UnknownStatus",
			requestBody: requestBody{Status: "dormant"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("dormant")).
					Times(1).
					Return(domain.Account{}, domain.ErrUnknownAccountStatus)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrUnknownAccountStatus.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.PATCH("/accounts/:id/status", handler.SetStatus)

			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPatch, "/accounts/1/status", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res struct {
				Data  data   `json:"data"`
				Error string `json:"error"`
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else if diff := cmp.Diff(frozen, res.Data.Account, compareOpts); diff != "" {
				t.Errorf("res.Data.Account mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
