package domain

// Role роль вызывающего
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Actor кто выполняет действие
type Actor struct {
	UserID       int64
	Role         Role
	TeamMemberID *int64 // для сотрудников
}

// IsStaff сотрудник или администратор
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// IsAdmin администратор аккаунта
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Source источник брони по роли
func (a Actor) Source() ReservationSource {
	if a.IsStaff() {
		return SourceStaff
	}
	return SourceClient
}

// OwnsLane сотрудник ведет дорожку teamMemberID.
// Нераспределенная дорожка доступна всем сотрудникам.
func (a Actor) OwnsLane(teamMemberID *int64) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.IsStaff() {
		return false
	}
	if teamMemberID == nil {
		return true
	}
	return a.TeamMemberID != nil && *a.TeamMemberID == *teamMemberID
}
