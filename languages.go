package loom

import "strings"

// LanguageNames maps locale codes to the names used in AI prompts,
// ordered by code.
var LanguageNames = map[string]string{
	"ar_SA": "Arabic (Saudi Arabia)",
	"bg_BG": "Bulgarian (Bulgaria)",
	"bn_BD": "Bengali (Bangladesh)",
	"ca_ES": "Catalan (Spain)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"de_DE": "German (Germany)",
	"el_GR": "Greek (Greece)",
	"en_GB": "English (United Kingdom)",
	"en_US": "English (United States)",
	"es_AR": "Spanish (Argentina)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"et_EE": "Estonian (Estonia)",
	"fa_IR": "Persian (Iran)",
	"fi_FI": "Finnish (Finland)",
	"fr_CA": "French (Canada)",
	"fr_FR": "French (France)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hr_HR": "Croatian (Croatia)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"ko_KR": "Korean (South Korea)",
	"lt_LT": "Lithuanian (Lithuania)",
	"lv_LV": "Latvian (Latvia)",
	"ms_MY": "Malay (Malaysia)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"nl_NL": "Dutch (Netherlands)",
	"pl_PL": "Polish (Poland)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sk_SK": "Slovak (Slovakia)",
	"sl_SI": "Slovenian (Slovenia)",
	"sr_RS": "Serbian (Serbia)",
	"sv_SE": "Swedish (Sweden)",
	"sw_KE": "Swahili (Kenya)",
	"th_TH": "Thai (Thailand)",
	"tl_PH": "Tagalog (Philippines)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"ur_PK": "Urdu (Pakistan)",
	"vi_VN": "Vietnamese (Vietnam)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
}

// ShortCodeToLocale expands bare language codes to a default locale.
// Where a language has several locales the most widely used one wins
// (pt resolves to Brazil, zh to the mainland).
var ShortCodeToLocale = map[string]string{
	"ar": "ar_SA",
	"bg": "bg_BG",
	"bn": "bn_BD",
	"ca": "ca_ES",
	"cs": "cs_CZ",
	"da": "da_DK",
	"de": "de_DE",
	"el": "el_GR",
	"en": "en_US",
	"es": "es_ES",
	"et": "et_EE",
	"fa": "fa_IR",
	"fi": "fi_FI",
	"fr": "fr_FR",
	"he": "he_IL",
	"hi": "hi_IN",
	"hr": "hr_HR",
	"hu": "hu_HU",
	"id": "id_ID",
	"it": "it_IT",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"lt": "lt_LT",
	"lv": "lv_LV",
	"ms": "ms_MY",
	"nb": "nb_NO",
	"nl": "nl_NL",
	"no": "nb_NO",
	"pl": "pl_PL",
	"pt": "pt_BR",
	"ro": "ro_RO",
	"ru": "ru_RU",
	"sk": "sk_SK",
	"sl": "sl_SI",
	"sr": "sr_RS",
	"sv": "sv_SE",
	"sw": "sw_KE",
	"th": "th_TH",
	"tl": "tl_PH",
	"tr": "tr_TR",
	"uk": "uk_UA",
	"ur": "ur_PK",
	"vi": "vi_VN",
	"zh": "zh_CN",
}

// localeClarifications disambiguates locales that share a base language,
// for AI prompts.
var localeClarifications = map[string]string{
	"es_ES": "Use European Spanish (vosotros, Peninsular vocabulary), not Latin American Spanish.",
	"es_MX": "Use Mexican Spanish (ustedes, Latin American vocabulary), not European Spanish.",
	"pt_BR": "Use Brazilian Portuguese, not European Portuguese.",
	"pt_PT": "Use European Portuguese, not Brazilian Portuguese.",
	"zh_CN": "Use Simplified Chinese characters (Mainland conventions).",
	"zh_TW": "Use Traditional Chinese characters (Taiwan conventions).",
	"en_GB": "Use British English spelling and vocabulary.",
	"en_US": "Use American English spelling and vocabulary.",
	"fr_CA": "Use Canadian French (Québécois conventions), not Metropolitan French.",
}

// styleDescriptions expands TranslationStyle values into prompt text.
var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:    "Use formal, professional language appropriate for official documents. Prefer formal address forms where the language distinguishes them.",
	StyleNeutral:   "Use a neutral, professional tone suitable for general web content.",
	StyleCasual:    "Use casual, conversational language as found in blogs and social media. Prefer informal address forms where natural.",
	StyleMarketing: "Use persuasive, engaging language suited to promotional content. Favor energy and appeal over literal fidelity.",
	StyleTechnical: "Use precise, technical language suited to documentation. Keep established technical terms conventional for the target language.",
}

// GetLanguageName returns the human-readable name for a language code,
// expanding bare short codes through their default locale. Unknown codes
// come back unchanged so prompts stay usable.
func GetLanguageName(langCode string) string {
	code := langCode
	if _, ok := LanguageNames[code]; !ok {
		if locale, ok := ShortCodeToLocale[code]; ok {
			code = locale
		}
	}
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return langCode
}

// GetLocaleClarification returns prompt guidance distinguishing the
// locale from sibling locales of the same language, or "" when the
// locale needs none.
func GetLocaleClarification(langCode string) string {
	return localeClarifications[NormalizeLocale(langCode)]
}

// GetStyleDescription expands a translation style into prompt text,
// defaulting to the neutral register.
func GetStyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleNeutral]
}

// GetDirection returns "rtl" or "ltr" for a language code, keyed on the
// base language ("ar" from "ar_SA").
func GetDirection(langCode string) string {
	base, _, _ := strings.Cut(langCode, "_")
	if RTLLanguages[strings.ToLower(base)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL reports whether the language is written right to left.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale rewrites BCP 47 hyphens to underscores ("es-ES"
// becomes "es_ES"), the form the lookup tables use.
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang rewrites a locale to HTML lang attribute form ("es_ES"
// becomes "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
