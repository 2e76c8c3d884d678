// Package locale holds the user-facing strings of the chat client.
package locale

import (
	"errors"

	"github.com/and161185/o1chat/internal/errs"
)

// Key identifies a translatable string.
type Key string

const (
	Login         Key = "login"
	EnterUsername Key = "enter_username"
	Users         Key = "users"
	Send          Key = "send"
	TypeMessage   Key = "type_message"
	SelectUser    Key = "select_user"
	Language      Key = "language"
	Close         Key = "close"
	Error         Key = "error"
	FailedConnect Key = "failed_connect"
	Degraded      Key = "degraded"
	Online        Key = "online"
	Logout        Key = "logout"

	SubscriptionEnded Key = "subscription_ended"
)

var tables = map[string]map[Key]string{
	"en": {
		Login:         "Login",
		EnterUsername: "Enter username",
		Users:         "Users",
		Send:          "Send",
		TypeMessage:   "Type message...",
		SelectUser:    "Select user",
		Language:      "Language",
		Close:         "Close",
		Error:         "Error",
		FailedConnect: "Failed to connect to servers.",
		Degraded:      "No server reachable, retrying",
		Online:        "Connected",
		Logout:        "Logout",

		SubscriptionEnded: "Free subscription ended 🥲 (its joke 🤣)",
	},
	"ru": {
		Login:         "Вход",
		EnterUsername: "Введите имя пользователя",
		Users:         "Пользователи",
		Send:          "Отправить",
		TypeMessage:   "Введите сообщение...",
		SelectUser:    "Выберите пользователя",
		Language:      "Язык",
		Close:         "Закрыть",
		Error:         "Ошибка",
		FailedConnect: "Не удалось подключиться к серверам.",
		Degraded:      "Нет доступных серверов, повтор",
		Online:        "Подключено",
		Logout:        "Выход",

		SubscriptionEnded: "Подписка бесплатная закончилась 🥲(это шутка 🤣)",
	},
}

// Languages lists supported languages in toggle order.
var Languages = []string{"en", "ru"}

// T returns the string for key in lang, falling back to English and then to the key.
func T(lang string, key Key) string {
	if s, ok := tables[lang][key]; ok {
		return s
	}
	if s, ok := tables["en"][key]; ok {
		return s
	}
	return string(key)
}

// Toggle returns the language after lang.
func Toggle(lang string) string {
	for i, l := range Languages {
		if l == lang {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return Languages[0]
}

// ForError maps a semantic outcome of the core to a string key.
func ForError(err error) Key {
	switch {
	case errors.Is(err, errs.ErrRegistrationFailed), errors.Is(err, errs.ErrAllServersFailed):
		return FailedConnect
	default:
		return Error
	}
}
