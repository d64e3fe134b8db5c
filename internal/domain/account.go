package domain

import (
	"fmt"
	"time"
)

// BusinessPreset тип бизнеса аккаунта. От него зависит доступность очереди.
type BusinessPreset string

const (
	PresetSalon    BusinessPreset = "salon"
	PresetClinic   BusinessPreset = "clinic"
	PresetBarber   BusinessPreset = "barber"
	PresetServices BusinessPreset = "field_services"
	PresetRetail   BusinessPreset = "retail"
)

// SupportsQueue пресеты с живой очередью
func (p BusinessPreset) SupportsQueue() bool {
	switch p {
	case PresetSalon, PresetClinic, PresetBarber:
		return true
	}
	return false
}

// DispatchMode политика порядка вызова из очереди
type DispatchMode string

const (
	DispatchFIFO                    DispatchMode = "fifo"
	DispatchFIFOAppointmentPriority DispatchMode = "fifo_appointment_priority"
	DispatchSkillBased              DispatchMode = "skill_based"
)

// IsValid известный режим
func (m DispatchMode) IsValid() bool {
	switch m {
	case DispatchFIFO, DispatchFIFOAppointmentPriority, DispatchSkillBased:
		return true
	}
	return false
}

// QueueSettings настройки очереди аккаунта
type QueueSettings struct {
	Enabled                bool
	GraceMinutes           int
	DispatchMode           DispatchMode
	NoShowOnGraceExpiry    bool
	DuplicateWindowMinutes int
}

// Account аккаунт (тенант)
type Account struct {
	ID             int64
	Name           string
	Timezone       string
	BusinessPreset BusinessPreset
	Queue          QueueSettings
}

// Location часовой пояс аккаунта
func (a *Account) Location() (*time.Location, error) {
	return LoadLocation(a.Timezone)
}

// QueueFeaturesEnabled очередь разрешена пресетом и включена
func (a *Account) QueueFeaturesEnabled() bool {
	return a.BusinessPreset.SupportsQueue() && a.Queue.Enabled
}

// GraceMinutes период ожидания после вызова
func (a *Account) GraceMinutes() int {
	if a.Queue.GraceMinutes <= 0 {
		return DefaultQueueGraceMinutes
	}
	return a.Queue.GraceMinutes
}

// DuplicateWindowMinutes окно поиска дублирующей брони при создании талона
func (a *Account) DuplicateWindowMinutes() int {
	if a.Queue.DuplicateWindowMinutes <= 0 {
		return DefaultDuplicateWindowMinutes
	}
	return a.Queue.DuplicateWindowMinutes
}

// DispatchMode режим диспетчеризации, fifo по умолчанию
func (a *Account) DispatchMode() DispatchMode {
	if !a.Queue.DispatchMode.IsValid() {
		return DispatchFIFO
	}
	return a.Queue.DispatchMode
}

// TeamMember сотрудник аккаунта
type TeamMember struct {
	ID         int64
	AccountID  int64
	Name       string
	IsActive   bool
	ServiceIDs []int64
}

// OffersService сотрудник оказывает услугу. Без услуги подходит любой.
func (m *TeamMember) OffersService(serviceID *int64) bool {
	if serviceID == nil {
		return true
	}
	for _, id := range m.ServiceIDs {
		if id == *serviceID {
			return true
		}
	}
	return false
}

// Service услуга аккаунта
type Service struct {
	ID              int64
	AccountID       int64
	Name            string
	DurationMinutes int
}

// LoadLocation загружает часовой пояс, пустая строка = UTC
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// DayBounds начало и конец локальных суток, в которые попадает t
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
