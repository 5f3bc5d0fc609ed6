package locale

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Keys for the strings the routing core itself sends or matches.
// Hosts may register additional keys for their own dialogs.
const (
	KeyRestartCommand        = "restart_command"
	KeyAttachmentUnsupported = "attachment_unsupported"
	KeyWelcome               = "welcome"
	KeyGreeting              = "greeting"
	KeyGreetingNamed         = "greeting_named"
	KeyCancelPrompt          = "cancel_prompt"
	KeyCancelConfirmed       = "cancel_confirmed"
	KeyCancelAborted         = "cancel_aborted"
	KeyConfirmWord           = "confirm_word"
	KeyAnswerClarify         = "answer_clarify"
	KeyAnswerNotFound        = "answer_not_found"
)

// Catalog holds the supported locales and the localized strings for
// each of them. It replaces ambient gettext-style lookup: the resolved
// locale is threaded explicitly through every turn.
type Catalog struct {
	def       string
	supported []string
	matcher   language.Matcher
	strings   map[string]map[string]string
}

// NewCatalog builds a catalog from per-locale string tables. The
// default locale must have a table.
func NewCatalog(def string, tables map[string]map[string]string) (*Catalog, error) {
	if def == "" {
		return nil, fmt.Errorf("locale: default locale is required")
	}
	if _, ok := tables[def]; !ok {
		return nil, fmt.Errorf("locale: no string table for default locale %q", def)
	}

	supported := make([]string, 0, len(tables))
	for loc := range tables {
		supported = append(supported, loc)
	}
	sort.Strings(supported)

	// The default tag goes first so unmatched hints fall back to it.
	tags := []language.Tag{language.Make(def)}
	tagged := []string{def}
	for _, loc := range supported {
		if loc == def {
			continue
		}
		tags = append(tags, language.Make(loc))
		tagged = append(tagged, loc)
	}

	return &Catalog{
		def:       def,
		supported: tagged,
		matcher:   language.NewMatcher(tags),
		strings:   tables,
	}, nil
}

type catalogFile struct {
	Default string                       `yaml:"default"`
	Locales map[string]map[string]string `yaml:"locales"`
}

// LoadCatalog reads a YAML catalog file:
//
//	default: en-US
//	locales:
//	  en-US:
//	    restart_command: restart
//	    ...
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locale: read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("locale: parse catalog: %w", err)
	}
	return NewCatalog(f.Default, f.Locales)
}

// Default returns the catalog's default locale.
func (c *Catalog) Default() string {
	return c.def
}

// Supported returns the configured locales, default first.
func (c *Catalog) Supported() []string {
	out := make([]string, len(c.supported))
	copy(out, c.supported)
	return out
}

// IsSupported reports whether locale has a string table.
func (c *Catalog) IsSupported(locale string) bool {
	_, ok := c.strings[locale]
	return ok
}

// Resolve coerces a stored or hinted locale to a supported one. An
// exact match wins; otherwise language matching picks the closest
// supported locale ("en" resolves to "en-US"). Empty or unparseable
// input resolves to the default.
func (c *Catalog) Resolve(candidate string) string {
	if candidate == "" {
		return c.def
	}
	if c.IsSupported(candidate) {
		return candidate
	}
	tag, err := language.Parse(candidate)
	if err != nil {
		return c.def
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.def
	}
	return c.supported[idx]
}

// Text looks up key in the given locale, falling back to the default
// locale's entry, then to the key itself so a missing string is visible
// rather than silent.
func (c *Catalog) Text(locale, key string) string {
	if table, ok := c.strings[locale]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := c.strings[c.def][key]; ok {
		return s
	}
	return key
}

// DefaultStrings returns the built-in en-US / fr-FR / es-ES tables.
func DefaultStrings() map[string]map[string]string {
	return map[string]map[string]string{
		"en-US": {
			KeyRestartCommand:        "restart",
			KeyAttachmentUnsupported: "Sorry, I can't process attachments. Please type your question.",
			KeyWelcome:               "Hi! I'm your assistant. Ask me anything, or say \"hello\" to get started.",
			KeyGreeting:              "Hello! How can I help you today?",
			KeyGreetingNamed:         "Hello %s! How can I help you today?",
			KeyCancelPrompt:          "Do you want to cancel what we were doing? (yes/no)",
			KeyCancelConfirmed:       "Okay, I've cancelled that.",
			KeyCancelAborted:         "Alright, let's continue.",
			KeyConfirmWord:           "yes",
			KeyAnswerClarify:         "I'm not sure I found the right answer. Could you rephrase your question?",
			KeyAnswerNotFound:        "Sorry, I couldn't find an answer to that.",
		},
		"fr-FR": {
			KeyRestartCommand:        "recommencer",
			KeyAttachmentUnsupported: "Désolé, je ne peux pas traiter les pièces jointes. Veuillez taper votre question.",
			KeyWelcome:               "Bonjour ! Je suis votre assistant. Posez-moi une question pour commencer.",
			KeyGreeting:              "Bonjour ! Comment puis-je vous aider ?",
			KeyGreetingNamed:         "Bonjour %s ! Comment puis-je vous aider ?",
			KeyCancelPrompt:          "Voulez-vous annuler ce que nous faisions ? (oui/non)",
			KeyCancelConfirmed:       "D'accord, c'est annulé.",
			KeyCancelAborted:         "Très bien, continuons.",
			KeyConfirmWord:           "oui",
			KeyAnswerClarify:         "Je ne suis pas sûr d'avoir trouvé la bonne réponse. Pouvez-vous reformuler ?",
			KeyAnswerNotFound:        "Désolé, je n'ai pas trouvé de réponse à cette question.",
		},
		"es-ES": {
			KeyRestartCommand:        "reiniciar",
			KeyAttachmentUnsupported: "Lo siento, no puedo procesar archivos adjuntos. Escribe tu pregunta.",
			KeyWelcome:               "¡Hola! Soy tu asistente. Pregúntame lo que quieras para empezar.",
			KeyGreeting:              "¡Hola! ¿En qué puedo ayudarte?",
			KeyGreetingNamed:         "¡Hola %s! ¿En qué puedo ayudarte?",
			KeyCancelPrompt:          "¿Quieres cancelar lo que estábamos haciendo? (sí/no)",
			KeyCancelConfirmed:       "De acuerdo, lo he cancelado.",
			KeyCancelAborted:         "Muy bien, sigamos.",
			KeyConfirmWord:           "sí",
			KeyAnswerClarify:         "No estoy seguro de haber encontrado la respuesta correcta. ¿Puedes reformular la pregunta?",
			KeyAnswerNotFound:        "Lo siento, no encontré una respuesta a eso.",
		},
	}
}
