package domain

import "time"

// SettingsOverride переопределение настроек бронирования.
// TeamMemberID = nil - уровень аккаунта. Поле nil - значение не задано на этом уровне.
type SettingsOverride struct {
	ID                      int64
	AccountID               int64
	TeamMemberID            *int64
	BufferMinutes           *int
	SlotIntervalMinutes     *int
	MinNoticeMinutes        *int
	MaxAdvanceDays          *int
	CancellationCutoffHours *int
	ClientCanBook           *bool
	ClientCanCancel         *bool
	ClientCanReschedule     *bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsAccountLevel переопределение уровня аккаунта
func (o *SettingsOverride) IsAccountLevel() bool {
	return o.TeamMemberID == nil
}

// Settings итоговые настройки для одной операции
type Settings struct {
	BufferMinutes           int
	SlotIntervalMinutes     int
	MinNoticeMinutes        int
	MaxAdvanceDays          int
	CancellationCutoffHours int
	ClientCanBook           bool
	ClientCanCancel         bool
	ClientCanReschedule     bool
}

// DefaultSettings значения, когда ничего не переопределено
func DefaultSettings() Settings {
	return Settings{
		BufferMinutes:           DefaultBufferMinutes,
		SlotIntervalMinutes:     DefaultSlotIntervalMinutes,
		MinNoticeMinutes:        DefaultMinNoticeMinutes,
		MaxAdvanceDays:          DefaultMaxAdvanceDays,
		CancellationCutoffHours: DefaultCancellationCutoffHour,
		ClientCanBook:           true,
		ClientCanCancel:         true,
		ClientCanReschedule:     true,
	}
}

// ResolveSettings собирает настройки: сотрудник > аккаунт > значения по умолчанию.
// Любой из уровней может быть nil.
func ResolveSettings(account, member *SettingsOverride) Settings {
	def := DefaultSettings()
	return Settings{
		BufferMinutes: ClampBuffer(resolveInt(def.BufferMinutes,
			account.pick(func(o *SettingsOverride) *int { return o.BufferMinutes }),
			member.pick(func(o *SettingsOverride) *int { return o.BufferMinutes }))),
		SlotIntervalMinutes: ClampSlotInterval(resolveInt(def.SlotIntervalMinutes,
			account.pick(func(o *SettingsOverride) *int { return o.SlotIntervalMinutes }),
			member.pick(func(o *SettingsOverride) *int { return o.SlotIntervalMinutes }))),
		MinNoticeMinutes: nonNegative(resolveInt(def.MinNoticeMinutes,
			account.pick(func(o *SettingsOverride) *int { return o.MinNoticeMinutes }),
			member.pick(func(o *SettingsOverride) *int { return o.MinNoticeMinutes }))),
		MaxAdvanceDays: nonNegative(resolveInt(def.MaxAdvanceDays,
			account.pick(func(o *SettingsOverride) *int { return o.MaxAdvanceDays }),
			member.pick(func(o *SettingsOverride) *int { return o.MaxAdvanceDays }))),
		CancellationCutoffHours: nonNegative(resolveInt(def.CancellationCutoffHours,
			account.pick(func(o *SettingsOverride) *int { return o.CancellationCutoffHours }),
			member.pick(func(o *SettingsOverride) *int { return o.CancellationCutoffHours }))),
		ClientCanBook: resolveBool(def.ClientCanBook,
			account.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanBook }),
			member.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanBook })),
		ClientCanCancel: resolveBool(def.ClientCanCancel,
			account.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanCancel }),
			member.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanCancel })),
		ClientCanReschedule: resolveBool(def.ClientCanReschedule,
			account.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanReschedule }),
			member.pickBool(func(o *SettingsOverride) *bool { return o.ClientCanReschedule })),
	}
}

// LatestStart самое позднее начало, доступное клиенту. MaxAdvanceDays = 0 снимает
// ограничение, тогда ok = false.
func (s Settings) LatestStart(now time.Time) (latest time.Time, ok bool) {
	if s.MaxAdvanceDays <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, s.MaxAdvanceDays), true
}

// ClampBuffer ограничивает буфер диапазоном [0, 240]
func ClampBuffer(v int) int {
	return clamp(v, MinBufferMinutes, MaxBufferMinutes)
}

// ClampSlotInterval ограничивает шаг слотов диапазоном [5, 120]
func ClampSlotInterval(v int) int {
	return clamp(v, MinSlotIntervalMinutes, MaxSlotIntervalMinutes)
}

func (o *SettingsOverride) pick(field func(*SettingsOverride) *int) *int {
	if o == nil {
		return nil
	}
	return field(o)
}

func (o *SettingsOverride) pickBool(field func(*SettingsOverride) *bool) *bool {
	if o == nil {
		return nil
	}
	return field(o)
}

func resolveInt(fallback int, account, member *int) int {
	if member != nil {
		return *member
	}
	if account != nil {
		return *account
	}
	return fallback
}

func resolveBool(fallback bool, account, member *bool) bool {
	if member != nil {
		return *member
	}
	if account != nil {
		return *account
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
