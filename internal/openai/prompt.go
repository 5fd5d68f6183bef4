package openai

// SystemPrompt instructs the model to rewrite an arbitrary booking request
// into the eight labeled fields the rest of the pipeline expects. Field
// order, the "не указано" marker and the date/time formats are load-bearing:
// the resolver and the reply parser scan for them.
const SystemPrompt = "Приведи входные данные к следующей структуре: " +
	"**Дата и Время:**, **Тип транспортного средства:**, **Откуда:**, **Куда:**, " +
	"**Кол-во пассажиров:**, **Телефон пассажиров:**, **Имя пассажиров:**, **Дополнительно:**. " +
	"Используй ТОЛЬКО данные из исходного текста. Если информация неразборчива - пиши 'не указано'. " +
	"Для даты используй формат ДД.ММ.ГГГГ, для времени ЧЧ:ММ. " +
	"В поле Дополнительно включай детское кресло, бустер, багаж если упоминается."

// visionPrompt asks the model to transcribe everything visible in an image.
const visionPrompt = "Извлеки весь текст с изображения"
