package queue

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// transitionRule допустимые исходные статусы действия и целевой статус
type transitionRule struct {
	from []domain.QueueStatus
	to   domain.QueueStatus
}

var rules = map[domain.QueueAction]transitionRule{
	domain.ActionCheckIn: {
		from: []domain.QueueStatus{domain.QueueNotArrived, domain.QueueCheckedIn, domain.QueuePreCalled, domain.QueueCalled, domain.QueueSkipped},
		to:   domain.QueueCheckedIn,
	},
	domain.ActionStillHere: {
		from: []domain.QueueStatus{domain.QueueNotArrived, domain.QueueCheckedIn, domain.QueuePreCalled, domain.QueueCalled, domain.QueueSkipped},
		to:   domain.QueueCheckedIn,
	},
	domain.ActionPreCall: {
		from: []domain.QueueStatus{domain.QueueNotArrived, domain.QueueCheckedIn, domain.QueueSkipped},
		to:   domain.QueuePreCalled,
	},
	domain.ActionCall: {
		from: []domain.QueueStatus{domain.QueueNotArrived, domain.QueueCheckedIn, domain.QueuePreCalled, domain.QueueSkipped, domain.QueueCalled},
		to:   domain.QueueCalled,
	},
	domain.ActionStart: {
		from: []domain.QueueStatus{domain.QueueCheckedIn, domain.QueuePreCalled, domain.QueueCalled},
		to:   domain.QueueInService,
	},
	domain.ActionDone: {
		from: []domain.QueueStatus{domain.QueueInService, domain.QueueCalled},
		to:   domain.QueueDone,
	},
	domain.ActionSkip: {
		from: []domain.QueueStatus{domain.QueueNotArrived, domain.QueueCheckedIn, domain.QueuePreCalled, domain.QueueCalled},
		to:   domain.QueueSkipped,
	},
	// cancel разрешен из любого незакрытого статуса, целевой статус зависит от инициатора
	domain.ActionCancel: {to: domain.QueueCancelled},
}

// transitionInput параметры применения действия
type transitionInput struct {
	Action       domain.QueueAction
	Now          time.Time
	GraceMinutes int
	ByClient     bool
}

// transitionResult итог применения действия
type transitionResult struct {
	From  domain.QueueStatus
	To    domain.QueueStatus
	Audit bool // требуется запись в журнал отметок
}

// CanApply действие допустимо для текущего статуса элемента
func CanApply(item *domain.QueueItem, action domain.QueueAction) bool {
	rule, ok := rules[action]
	if !ok || item.IsTerminal() {
		return false
	}
	if action == domain.ActionCancel {
		return true
	}
	return containsStatus(rule.from, item.Status)
}

// applyTransition меняет статус и отметки времени элемента.
// Элемент не изменяется, если действие недопустимо.
func applyTransition(item *domain.QueueItem, in transitionInput) (transitionResult, error) {
	rule, ok := rules[in.Action]
	if !ok {
		return transitionResult{}, domain.NewValidationError("action", domain.ErrUnsupportedAction)
	}
	if item.IsTerminal() {
		return transitionResult{}, domain.NewValidationError("status", domain.ErrItemTerminal)
	}
	if !CanApply(item, in.Action) {
		return transitionResult{}, domain.NewValidationError("status", domain.ErrInvalidTransition)
	}

	now := in.Now.UTC()
	result := transitionResult{From: item.Status, To: rule.to}

	switch in.Action {
	case domain.ActionCheckIn, domain.ActionStillHere:
		if item.CheckedInAt == nil {
			item.CheckedInAt = &now
		}
		item.PreCalledAt = nil
		item.CalledAt = nil
		result.Audit = true
	case domain.ActionPreCall:
		item.PreCalledAt = &now
	case domain.ActionCall:
		expires := now.Add(time.Duration(in.GraceMinutes) * time.Minute)
		item.CalledAt = &now
		item.CallExpiresAt = &expires
	case domain.ActionStart:
		item.StartedAt = &now
	case domain.ActionDone:
		if item.StartedAt == nil {
			item.StartedAt = &now
		}
		item.CompletedAt = &now
	case domain.ActionCancel:
		if in.ByClient && item.ItemType == domain.ItemTicket {
			result.To = domain.QueueLeft
		}
		item.CompletedAt = &now
	}

	item.Status = result.To
	if item.Status != domain.QueueCalled {
		item.CallExpiresAt = nil
	}

	return result, nil
}

// expireCall статус после истечения периода ожидания вызова
func expireCall(item *domain.QueueItem, noShowOnExpiry bool) domain.QueueStatus {
	if item.IsAppointment() && noShowOnExpiry {
		item.Status = domain.QueueNoShow
	} else {
		item.Status = domain.QueueSkipped
	}
	item.CallExpiresAt = nil
	return item.Status
}

// callExpired вызов просрочен на момент now
func callExpired(item *domain.QueueItem, now time.Time) bool {
	return item.Status == domain.QueueCalled && item.CallExpiresAt != nil && !now.Before(*item.CallExpiresAt)
}

// actionEvent событие уведомления для действия
func actionEvent(action domain.QueueAction) (domain.EventName, bool) {
	switch action {
	case domain.ActionPreCall:
		return domain.EventQueuePreCalled, true
	case domain.ActionCall:
		return domain.EventQueueCalled, true
	case domain.ActionCancel:
		return domain.EventQueueCancelled, true
	case domain.ActionDone:
		return domain.EventQueueDone, true
	}
	return "", false
}

// reservationStatusFor статус брони, которому соответствует закрытый элемент-зеркало
func reservationStatusFor(status domain.QueueStatus) (domain.ReservationStatus, bool) {
	switch status {
	case domain.QueueDone:
		return domain.ReservationCompleted, true
	case domain.QueueCancelled, domain.QueueLeft:
		return domain.ReservationCancelled, true
	case domain.QueueNoShow:
		return domain.ReservationNoShow, true
	}
	return "", false
}

func containsStatus(list []domain.QueueStatus, status domain.QueueStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
