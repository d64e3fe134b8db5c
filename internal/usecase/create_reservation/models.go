package create_reservation

import "github.com/m04kA/SMC-ReservationService/internal/domain"

// Request модель запроса на создание бронирования.
// StartsAt/EndsAt - настенное время "YYYY-MM-DDTHH:MM" в Timezone
// (пусто = часовой пояс аккаунта) либо RFC3339 со смещением.
type Request struct {
	AccountID       int64
	Actor           domain.Actor
	Client          domain.ClientIdentity // для клиента подставляется он сам
	ClientID        *int64                // профиль клиента в CRM
	TeamMemberID    int64
	ServiceID       *int64
	StartsAt        string
	EndsAt          string
	DurationMinutes *int
	Timezone        string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Reservation     *domain.Reservation
	CanClientModify bool
}
