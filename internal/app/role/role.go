package role

// Роли сотрудников
type Role int

const (
	Manager Role = iota // ведёт контракты и рассылает ссылки
	Admin               // дополнительно управляет каталогом сборов
)
