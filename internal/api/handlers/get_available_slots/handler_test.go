package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*getAvailableSlots.Response)
	return resp, args.Error(1)
}

func serve(uc SlotFinder, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/accounts/{accountId}/available-slots", NewHandler(uc, logger.NewNop()).Handle).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle(t *testing.T) {
	t.Run("Slots", func(t *testing.T) {
		start := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
		local := start.In(time.FixedZone("EST", -5*3600))

		uc := new(MockUseCase)
		uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
			return req.AccountID == 1 && req.DateFrom == "2025-03-03" && req.DateTo == "" &&
				req.TeamMemberID != nil && *req.TeamMemberID == 10 &&
				req.DurationMinutes != nil && *req.DurationMinutes == 30
		})).Return(&getAvailableSlots.Response{
			AccountID:       1,
			Timezone:        "America/New_York",
			DurationMinutes: 30,
			Slots: []getAvailableSlots.Slot{{
				TeamMemberID: 10,
				StartsAt:     start,
				EndsAt:       start.Add(30 * time.Minute),
				LocalDate:    "2025-03-03",
				StartTime:    types.NewTimeString(local),
				EndTime:      types.NewTimeString(local.Add(30 * time.Minute)),
			}},
		}, nil)

		rec := serve(uc, "/accounts/1/available-slots?date=2025-03-03&team_member_id=10&duration_minutes=30")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AvailableSlotsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Slots, 1)
		assert.Equal(t, "2025-03-03T14:00:00Z", resp.Slots[0].StartsAt)
		assert.Equal(t, "09:00", resp.Slots[0].StartTime)
		assert.Equal(t, "09:30", resp.Slots[0].EndTime)
	})

	t.Run("Bad query", func(t *testing.T) {
		uc := new(MockUseCase)
		assert.Equal(t, http.StatusBadRequest, serve(uc, "/accounts/1/available-slots?date=2025-03-03&duration_minutes=x").Code)
		assert.Equal(t, http.StatusBadRequest, serve(uc, "/accounts/x/available-slots").Code)
		uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("Validation and not found", func(t *testing.T) {
		uc := new(MockUseCase)
		uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool { return req.AccountID == 1 })).
			Return(nil, domain.NewValidationError("date", domain.ErrInvalidDateTime))
		uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool { return req.AccountID == 2 })).
			Return(nil, getAvailableSlots.ErrAccountNotFound)

		assert.Equal(t, http.StatusBadRequest, serve(uc, "/accounts/1/available-slots?date=bad").Code)
		assert.Equal(t, http.StatusNotFound, serve(uc, "/accounts/2/available-slots?date=2025-03-03").Code)
	})
}
