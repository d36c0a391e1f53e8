package language

import "unicode"

type scriptLang struct {
	lang  string
	table *unicode.RangeTable
}

var scripts = []scriptLang{
	{"ru", unicode.Cyrillic},
	{"el", unicode.Greek},
	{"ja", unicode.Hiragana},
	{"ja", unicode.Katakana},
	{"zh", unicode.Han},
	{"ko", unicode.Hangul},
	{"ar", unicode.Arabic},
	{"he", unicode.Hebrew},
	{"th", unicode.Thai},
}

var stopwords = map[string]map[string]struct{}{
	"en": set("the", "and", "is", "are", "you", "your", "to", "of", "in", "for", "with", "this",
		"that", "it", "be", "can", "if", "or", "on", "will", "how", "what", "do", "not", "have",
		"from", "by", "at", "an", "my", "we", "was", "they"),
	"es": set("el", "la", "los", "las", "y", "es", "son", "que", "del", "por", "para", "con",
		"una", "un", "su", "como", "pero", "más", "puede", "si", "tu", "lo", "al", "este", "está"),
	"fr": set("le", "la", "les", "et", "est", "sont", "des", "du", "pour", "avec", "une", "un",
		"vous", "votre", "que", "qui", "dans", "sur", "pas", "ce", "cette", "il", "nous", "au"),
	"de": set("der", "die", "das", "und", "ist", "sind", "mit", "für", "von", "zu", "den", "dem",
		"ein", "eine", "nicht", "sie", "ihr", "ihre", "auf", "wie", "auch", "bei", "wird", "kann"),
	"it": set("il", "lo", "gli", "e", "è", "sono", "di", "della", "per", "con", "una", "uno",
		"che", "non", "come", "anche", "questo", "nel", "alla", "può", "tuo", "più"),
	"pt": set("o", "os", "as", "e", "é", "são", "do", "da", "dos", "das", "para", "com", "uma",
		"um", "que", "não", "seu", "sua", "como", "mais", "pode", "você", "no", "na"),
	"nl": set("de", "het", "een", "en", "is", "zijn", "van", "voor", "met", "niet", "je", "jouw",
		"op", "dat", "die", "ook", "wordt", "kan", "bij", "naar", "u", "uw"),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
