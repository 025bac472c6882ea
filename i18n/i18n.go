package i18n

import (
	"regexp"
	"strings"
)

// Language represents the target language for user-facing text
type Language string

const (
	LanguageEN Language = "en"
	LanguageJA Language = "ja"
)

// LanguageFromLocale maps a client locale such as "ja-JP" to a [Language].
// Unknown locales fall back to English.
func LanguageFromLocale(locale string) Language {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(locale, "ja") || strings.HasPrefix(locale, "jp") {
		return LanguageJA
	}
	return LanguageEN
}

// Text holds the same text in each supported language.
type Text struct {
	EN string `yaml:"en"`
	JA string `yaml:"ja"`
}

// In returns the text for lang, falling back to whichever translation is
// present.
func (t Text) In(lang Language) string {
	if lang == LanguageJA && t.JA != "" {
		return t.JA
	}
	if t.EN != "" {
		return t.EN
	}
	return t.JA
}

// IsZero reports whether neither translation is set.
func (t Text) IsZero() bool {
	return t.EN == "" && t.JA == ""
}

// MessagePattern represents a compiled regex pattern with its Japanese translation template
type MessagePattern struct {
	Pattern     *regexp.Regexp
	Translation string
}

// Translator handles server message translation
type Translator struct {
	patterns []MessagePattern
}

// NewTranslator creates a new translator with pre-compiled regex patterns
func NewTranslator() *Translator {
	patterns := []MessagePattern{
		// カタログ (Catalog)
		{
			Pattern:     regexp.MustCompile(`^failed to load custom catalog (.+?): (.+)$`),
			Translation: "カスタムカタログ $1 の読み込みに失敗しました: $2",
		},
		{
			Pattern:     regexp.MustCompile(`^reloaded custom catalog (.+?)$`),
			Translation: "カスタムカタログ $1 を再読み込みしました",
		},
		{
			Pattern:     regexp.MustCompile(`^duplicate entry id (\d+) in category (.+?)$`),
			Translation: "カテゴリ $2 でエントリID $1 が重複しています",
		},
		{
			Pattern:     regexp.MustCompile(`^function (.+?) references unknown category (.+?)$`),
			Translation: "関数 $1 が未知のカテゴリ $2 を参照しています",
		},

		// ドキュメント (Documents)
		{
			Pattern:     regexp.MustCompile(`^document (.+?) is not open$`),
			Translation: "ドキュメント $1 は開かれていません",
		},

		// 補完 (Completion)
		{
			Pattern:     regexp.MustCompile(`^completion provider (.+?) failed: (.+)$`),
			Translation: "補完プロバイダ $1 が失敗しました: $2",
		},
	}

	return &Translator{patterns: patterns}
}

// Translate translates a message to the target language
func (t *Translator) Translate(msg string, lang Language) string {
	if lang == LanguageJA {
		return t.translateToJapanese(msg)
	}
	return msg
}

// translateToJapanese translates an English message to Japanese
func (t *Translator) translateToJapanese(msg string) string {
	cleanMsg := strings.TrimSpace(msg)
	for _, pattern := range t.patterns {
		if pattern.Pattern.MatchString(cleanMsg) {
			return pattern.Pattern.ReplaceAllString(cleanMsg, pattern.Translation)
		}
	}
	return msg
}

var defaultTranslator = NewTranslator()

// Translate translates msg with the default translator.
func Translate(msg string, lang Language) string {
	return defaultTranslator.Translate(msg, lang)
}
