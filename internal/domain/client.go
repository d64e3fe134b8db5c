package domain

import "strings"

// ClientKind вид идентичности клиента
type ClientKind int

const (
	ClientNone ClientKind = iota
	ClientRegistered
	ClientGuest
)

// ClientIdentity клиент, определенный один раз на входе:
// зарегистрированный пользователь (UserID) или гость (нормализованный Phone).
type ClientIdentity struct {
	Kind   ClientKind
	UserID int64
	Phone  string
	Name   string
}

// RegisteredClient клиент с учетной записью
func RegisteredClient(userID int64) ClientIdentity {
	return ClientIdentity{Kind: ClientRegistered, UserID: userID}
}

// GuestClient гость, идентифицируется по телефону
func GuestClient(phone, name string) ClientIdentity {
	return ClientIdentity{Kind: ClientGuest, Phone: NormalizePhone(phone), Name: name}
}

// IsZero клиент не указан (например, сотрудник создает бронь без клиента)
func (c ClientIdentity) IsZero() bool {
	return c.Kind == ClientNone
}

// ResolveClientIdentity пользователь важнее телефона
func ResolveClientIdentity(userID *int64, phone, name string) (ClientIdentity, error) {
	if userID != nil && *userID > 0 {
		return RegisteredClient(*userID), nil
	}
	if strings.TrimSpace(phone) == "" {
		return ClientIdentity{}, nil
	}
	guest := GuestClient(phone, name)
	if len(guest.Phone) < 7 {
		return ClientIdentity{}, NewValidationError("phone", ErrInvalidPhone)
	}
	return guest, nil
}

// NormalizePhone оставляет только цифры, к 10-значному номеру добавляет код страны 1
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return "1" + digits
	}
	return digits
}
