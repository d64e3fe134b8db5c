package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля запрещены
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError отправляет ошибку с произвольным кодом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// validationMessages тексты для ошибок, которые пользователь может исправить
var validationMessages = map[error]string{
	domain.ErrInvalidTeamMember:        "сотрудник недоступен",
	domain.ErrOutsideAvailability:      "время вне рабочих часов сотрудника",
	domain.ErrSpansMultipleDays:        "бронирование должно начинаться и заканчиваться в один день",
	domain.ErrEndBeforeStart:           "окончание должно быть позже начала",
	domain.ErrSlotNotAvailable:         "выбранное время уже занято",
	domain.ErrTooLateToBook:            "слишком поздно для бронирования этого времени",
	domain.ErrTooFarInFuture:           "время слишком далеко в будущем",
	domain.ErrClientBookingDisabled:    "онлайн-бронирование отключено",
	domain.ErrClientCancelDisabled:     "онлайн-отмена отключена",
	domain.ErrClientRescheduleDisabled: "онлайн-перенос отключен",
	domain.ErrModificationClosed:       "бронирование уже нельзя изменить",
	domain.ErrReservationNotActive:     "бронирование не активно",
	domain.ErrDuplicateTicket:          "у клиента уже есть активный талон",
	domain.ErrDuplicateReservation:     "у клиента уже есть предстоящее бронирование",
	domain.ErrQueueDisabled:            "очередь отключена для аккаунта",
	domain.ErrUnsupportedAction:        "неподдерживаемое действие",
	domain.ErrItemTerminal:             "элемент очереди уже закрыт",
	domain.ErrInvalidTransition:        "действие недоступно в текущем статусе",
	domain.ErrInvalidTimezone:          "неизвестный часовой пояс",
	domain.ErrInvalidDateTime:          "некорректная дата и время, ожидается YYYY-MM-DDTHH:MM",
	domain.ErrInvalidPhone:             "некорректный номер телефона",
	domain.ErrOutOfRange:               "значение вне допустимого диапазона",
}

// conflictErrors ошибки состояния, а не формата запроса
var conflictErrors = []error{
	domain.ErrSlotNotAvailable,
	domain.ErrDuplicateTicket,
	domain.ErrDuplicateReservation,
}

// RespondValidation отвечает на ошибку валидации, если err ею является.
// Конфликты отдаются с кодом 409, остальное с кодом 400.
func RespondValidation(w http.ResponseWriter, err error) bool {
	verr, ok := domain.AsValidationError(err)
	if !ok {
		return false
	}

	message := verr.Err.Error()
	for sentinel, text := range validationMessages {
		if errors.Is(verr.Err, sentinel) {
			message = text
			break
		}
	}

	status := http.StatusBadRequest
	for _, c := range conflictErrors {
		if errors.Is(verr.Err, c) {
			status = http.StatusConflict
			break
		}
	}

	RespondJSON(w, status, ErrorResponse{Error: message, Field: verr.Field})
	return true
}

// PathID достает положительный int64 из переменной пути
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// QueryID необязательный int64 из query параметра
func QueryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
