package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	HeaderUserID       = "X-User-ID"
	HeaderRole         = "X-Role"
	HeaderTeamMemberID = "X-Team-Member-ID"

	msgMissingUserID     = "отсутствует заголовок X-User-ID"
	msgInvalidUserID     = "некорректный X-User-ID"
	msgInvalidRole       = "некорректная роль в X-Role"
	msgInvalidTeamMember = "некорректный X-Team-Member-ID"
)

type actorKey struct{}

// Auth требует заголовок X-User-ID и кладет вызывающего в контекст.
// Аутентификация выполняется шлюзом, сервис доверяет заголовкам.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserID) == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		withActor(next, w, r)
	})
}

// OptionalAuth кладет вызывающего в контекст, если заголовки переданы.
// Используется там, где допустимы гости.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderUserID) == "" {
			next.ServeHTTP(w, r)
			return
		}
		withActor(next, w, r)
	})
}

func withActor(next http.Handler, w http.ResponseWriter, r *http.Request) {
	actor, msg := parseActor(r)
	if msg != "" {
		handlers.RespondBadRequest(w, msg)
		return
	}
	next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
}

func parseActor(r *http.Request) (domain.Actor, string) {
	userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
	if err != nil || userID <= 0 {
		return domain.Actor{}, msgInvalidUserID
	}

	actor := domain.Actor{UserID: userID, Role: domain.RoleClient}

	switch role := domain.Role(r.Header.Get(HeaderRole)); role {
	case "":
	case domain.RoleClient, domain.RoleStaff, domain.RoleAdmin:
		actor.Role = role
	default:
		return domain.Actor{}, msgInvalidRole
	}

	if raw := r.Header.Get(HeaderTeamMemberID); raw != "" {
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || memberID <= 0 {
			return domain.Actor{}, msgInvalidTeamMember
		}
		actor.TeamMemberID = &memberID
	}

	return actor, ""
}

// WithActor кладет вызывающего в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor вызывающий из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// GetUserID ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	actor, ok := GetActor(ctx)
	if !ok {
		return 0, false
	}
	return actor.UserID, true
}
