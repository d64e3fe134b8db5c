package intentguard

import "errors"

// ErrInternal возвращается при внутренних ошибках проверки
var ErrInternal = errors.New("intentguard: internal error")
