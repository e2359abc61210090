package gemini

// analysisPromptTemplate asks the model for a structured study of a
// cultural heritage item. The %s verbs are item type and content.
const analysisPromptTemplate = `Ты эксперт по культурному наследию Казахстана. Проанализируй материал типа "%s" и верни JSON со следующими полями:
{
  "summary": "краткое описание материала (2-3 предложения)",
  "cultural_context": "культурный контекст и значение",
  "historical_period": "исторический период происхождения",
  "key_themes": ["ключевые темы"],
  "region_origin": "регион происхождения",
  "related_traditions": ["связанные традиции"],
  "preservation_notes": "рекомендации по сохранению",
  "tags_kz": ["теги на казахском языке"],
  "tags_ru": ["теги на русском языке"]
}

Отвечай только валидным JSON без пояснений.

Материал:
%s`

// transcriptionPrompt asks for a verbatim transcription of the attached
// audio recording.
const transcriptionPrompt = `Расшифруй эту аудиозапись дословно. Запись может быть на казахском или русском языке. Верни только текст расшифровки без комментариев и пояснений.`
