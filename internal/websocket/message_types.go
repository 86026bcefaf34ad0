package websocket

// Типы сообщений сервер -> клиент
const (
	// RANDOMIZATION_UPDATED сообщает о новом состоянии рандомизации пользователя
	RANDOMIZATION_UPDATED = "randomization:updated"

	// SERVER_ERROR сообщает клиенту об ошибке обработки его сообщения
	SERVER_ERROR = "server:error"

	// PONG отвечает на клиентский PING
	PONG = "pong"
)

// Типы сообщений клиент -> сервер
const (
	// PING проверяет, что соединение живо на уровне приложения
	PING = "ping"
)
