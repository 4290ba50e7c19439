package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// supported are the catalog languages. The first is the default.
var supported = []language.Tag{language.AmericanEnglish, language.Russian}

var matcher = language.NewMatcher(supported)

// Russian messages of the user facing reports and CPU faults.
var russian = map[string]string{
	"START directive not found":                  "Не найдена директива START",
	"Error in DATA block":                        "Ошибка в блоке DATA",
	"Error on line %d":                           "Ошибка на строке %d",
	"Error on line %d: LABEL cannot be named %v": "Ошибка на строке %d: LABEL не может иметь имя %v",
	"Error during program execution":             "Ошибка во время выполнения программы",
	"Error":                                      "Ошибка",
	"Ctrl-C stops the run":                       "Ctrl-C прерывает выполнение",

	"stack empty":        "стек пуст",
	"stack full":         "стек переполнен",
	"address invalid":    "недопустимый адрес",
	"step limit reached": "достигнут предел шагов",
	"opcode invalid":     "недопустимый код операции",
	"line %d %v":         "строка %d %v",
	"emulator busy":      "эмулятор занят",
}

func init() {
	for key, msg := range russian {
		err := message.SetString(language.Russian, key, msg)
		if err != nil {
			panic(err)
		}
	}
}
