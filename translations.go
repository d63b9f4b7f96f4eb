package main

import (
	"golang.org/x/text/language"
)

type Translations map[string]string

type Language struct {
	found bool
	tr    Translations
}

// TransPool holds the message catalogs. Keys are the English messages.
type TransPool struct {
	defaultLang string
	languages   map[string]*Language
	matcher     language.Matcher
}

var catalogs = map[string]Translations{
	"en": {},
	"pt": {
		"Vote removed.":                               "Voto removido.",
		"Vote changed.":                               "Voto alterado.",
		"Vote registered.":                            "Voto registrado.",
		"Not found.":                                  "Não encontrado.",
		"Conflict.":                                   "Conflito.",
		"Topic not found.":                            "Tópico não encontrado.",
		"Argument not found.":                         "Argumento não encontrado.",
		"Parent argument not found.":                  "Argumento pai não encontrado.",
		"User not found.":                             "Usuário não encontrado.",
		"Invalid request body.":                       "Corpo da requisição inválido.",
		"Authentication required.":                    "Autenticação necessária.",
		"Invalid credentials.":                        "Credenciais inválidas.",
		"Email already registered.":                   "E-mail já cadastrado.",
		"Forbidden.":                                  "Acesso negado.",
		"Please wait before posting again.":           "Aguarde antes de publicar novamente.",
		"Topic is not open for arguments.":            "O tópico não está aberto para argumentos.",
		"Parent argument belongs to another topic.":   "O argumento pai pertence a outro tópico.",
		"Argument has replies and cannot be deleted.": "O argumento possui respostas e não pode ser removido.",
		"Argument deleted.":                           "Argumento removido.",
		"Content is empty.":                           "O conteúdo está vazio.",
		"Internal server error.":                      "Erro interno do servidor.",
		"Summaries are not available.":                "Resumos não estão disponíveis.",
		"Summary provider failed.":                    "Falha no provedor de resumos.",
	},
}

func NewTransPool(defaultLang string) *TransPool {
	tp := &TransPool{
		defaultLang: defaultLang,
		languages:   make(map[string]*Language),
	}
	tags := []language.Tag{language.Make(defaultLang)}
	for lang, tr := range catalogs {
		tp.languages[lang] = &Language{found: true, tr: tr}
		if lang != defaultLang {
			tags = append(tags, language.Make(lang))
		}
	}
	tp.matcher = language.NewMatcher(tags)
	return tp
}

func NewLanguage(lang string) *Language {
	return &Language{
		found: false,
		tr:    make(Translations),
	}
}

func (tp *TransPool) Get(lang string) *Language {
	l, ok := tp.languages[lang]
	if !ok {
		return NewLanguage(lang)
	}
	return l
}

// ForAcceptLanguage picks the catalog that best matches an Accept-Language
// header, falling back to the default language.
func (tp *TransPool) ForAcceptLanguage(header string) *Language {
	if header == "" {
		return tp.Get(tp.defaultLang)
	}
	tag, _ := language.MatchStrings(tp.matcher, header)
	base, _ := tag.Base()
	return tp.Get(base.String())
}

func (l *Language) Lang(text string) string {
	if !l.found {
		// Language was not found, return the string
		return text
	}
	res, ok := l.tr[text]
	if !ok {
		// Key was not found
		return text
	}
	// Return translated string
	return res
}
