package settlement

import "errors"

// Ошибки уровня предусловий - вызывающая сторона может исправить ввод и повторить
var (
	ErrInvalidFeeDefinition = errors.New("некорректное определение сбора")
	ErrUnknownFee           = errors.New("сбор не найден в каталоге")
	ErrUnknownContract      = errors.New("контракт не найден")
	ErrContractFinalized    = errors.New("контракт завершён, изменение сборов недоступно")
	ErrAlreadyFinalized     = errors.New("контракт уже завершён")
	// Единая ошибка для всех проблем с токеном: неизвестен, истёк, контракт
	// завершён. Причина намеренно не раскрывается
	ErrInvalidToken = errors.New("ссылка недействительна или устарела")
)
