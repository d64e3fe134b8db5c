package account

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден
	ErrAccountNotFound = errors.New("account.repository: account not found")

	// ErrTeamMemberNotFound возвращается, когда сотрудник не найден в аккаунте
	ErrTeamMemberNotFound = errors.New("account.repository: team member not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в аккаунте
	ErrServiceNotFound = errors.New("account.repository: service not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("account.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("account.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("account.repository: failed to scan row")
)
