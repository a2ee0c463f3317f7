package bot

// User-facing copy. Kept in one place so handlers and tests agree on it.
const (
	msgWelcome = "Добро пожаловать! Введите /register для регистрации, /enter_scores для ввода баллов ЕГЭ, " +
		"/view_scores для просмотра баллов или /delete_scores для удаления баллов."

	msgAskFirstName    = "Введите ваше имя:"
	msgAskLastName     = "Введите вашу фамилию:"
	msgRegistered      = "Регистрация успешна, %s %s! Введите свои баллы /enter_scores"
	msgRegisterFailed  = "Ошибка при регистрации"
	msgNotRegistered   = "Вы не зарегистрированы. Введите /register для регистрации."
	msgAskSubject      = "Введите предмет:"
	msgAskScore        = "Введите балл (от 0 до 100):"
	msgInvalidNumber   = "Введите корректное число."
	msgScoreOutOfRange = "Балл должен быть в диапазоне от 0 до 100. Попробуйте снова."
	msgScoreSaved      = "Балл успешно сохранен!"
	msgSaveFailed      = "Ошибка при сохранении баллов"
	msgScoresHeader    = "Ваши баллы ЕГЭ:\n"
	msgNoScores        = "У вас пока нет сохраненных баллов ЕГЭ."
	msgViewFailed      = "Ошибка при получении баллов"
	msgScoresDeleted   = "Все ваши баллы ЕГЭ были удалены."
	msgDeleteFailed    = "Ошибка при удалении баллов"
)

// Command menu descriptions.
const (
	descStart        = "Начать работу с ботом"
	descRegister     = "Зарегистрироваться"
	descEnterScores  = "Ввести баллы ЕГЭ"
	descViewScores   = "Посмотреть баллы ЕГЭ"
	descDeleteScores = "Удалить все баллы ЕГЭ"
)
