package i18n

import "strings"

// Translator retrieves localized messages for generated-code diagnostics.
// data provides values substituted for "{key}" placeholders in the message
// (for example "field" or "limit").
type Translator interface {
	Message(code string, data map[string]string) string
	Lang() string
}

// Message codes shared by the compiler and the renderers.
const (
	Required        = "required"
	InvalidType     = "invalid_type"
	TooSmall        = "too_small"
	TooBig          = "too_big"
	TooShort        = "too_short"
	TooLong         = "too_long"
	Pattern         = "pattern"
	TooFewItems     = "too_few_items"
	TooManyItems    = "too_many_items"
	InvalidEnum     = "invalid_enum"
	UnionNoMatch    = "union_no_match"
	UnionNotOne     = "union_not_exactly_one"
	ItemsType       = "items_type"
	ItemsTooSmall   = "items_too_small"
	ItemsTooBig     = "items_too_big"
	FormatEmail     = "format.email"
	FormatURI       = "format.uri"
	FormatDate      = "format.date"
	FormatDateTime  = "format.date-time"
	FormatIPv4      = "format.ipv4"
	FormatIPv6      = "format.ipv6"
	KindString      = "kind.string"
	KindInteger     = "kind.integer"
	KindNumber      = "kind.number"
	KindBoolean     = "kind.boolean"
	KindArray       = "kind.array"
	KindObject      = "kind.object"
	KindAny         = "kind.any"
	DocFields       = "doc.fields"
	DocOr           = "doc.or"
	DocArray        = "doc.array"
	DocObject       = "doc.object"
	DocOneOf        = "doc.one_of"
	DocAny          = "doc.any"
	DiagNotObject   = "diag.not_object"
	DiagMissingDef  = "diag.definition_missing"
	DiagInvalidDef  = "diag.definition_invalid"
	DiagNoDefs      = "diag.no_definitions"
	DiagListEmpty   = "diag.list_empty"
	DiagListHeading = "diag.list_heading"
)

var english = map[string]string{
	Required:        "{field} is required",
	InvalidType:     "{field} must be {expected}",
	TooSmall:        "{field} must be greater than or equal to {limit}",
	TooBig:          "{field} must be less than or equal to {limit}",
	TooShort:        "{field} must be at least {limit} characters",
	TooLong:         "{field} must be at most {limit} characters",
	Pattern:         "{field} does not match the required pattern",
	TooFewItems:     "{field} must have at least {limit} items",
	TooManyItems:    "{field} must have at most {limit} items",
	InvalidEnum:     "{field} must be one of: {values}",
	UnionNoMatch:    "{field} does not match any of the allowed schemas",
	UnionNotOne:     "{field} must match exactly one of the allowed schemas",
	ItemsType:       "All items in {field} must be {expected}",
	ItemsTooSmall:   "Items in {field} must be greater than or equal to {limit}",
	ItemsTooBig:     "Items in {field} must be less than or equal to {limit}",
	FormatEmail:     "{field} is not a valid email address",
	FormatURI:       "{field} is not a valid URI",
	FormatDate:      "{field} is not a valid date",
	FormatDateTime:  "{field} is not a valid date-time",
	FormatIPv4:      "{field} is not a valid IPv4 address",
	FormatIPv6:      "{field} is not a valid IPv6 address",
	KindString:      "a string",
	KindInteger:     "an integer",
	KindNumber:      "a number",
	KindBoolean:     "a boolean",
	KindArray:       "an array",
	KindObject:      "an object",
	KindAny:         "of the correct type",
	DocFields:       "{type} fields:",
	DocOr:           " or ",
	DocArray:        "array",
	DocObject:       "object",
	DocOneOf:        "oneOf pattern",
	DocAny:          "any",
	DiagNotObject:   "the JSON schema type is not object",
	DiagMissingDef:  "definition \"{name}\" does not exist in the JSON schema",
	DiagInvalidDef:  "definition \"{name}\" could not be compiled: {issues}",
	DiagNoDefs:      "no definition names were given",
	DiagListEmpty:   "this schema contains no definitions.",
	DiagListHeading: "available definitions:",
}

var japanese = map[string]string{
	Required:        "{field}は必須です",
	InvalidType:     "{field}は{expected}である必要があります",
	TooSmall:        "{field}は{limit}以上である必要があります",
	TooBig:          "{field}は{limit}以下である必要があります",
	TooShort:        "{field}は{limit}文字以上である必要があります",
	TooLong:         "{field}は{limit}文字以下である必要があります",
	Pattern:         "{field}は指定されたパターンに一致しません",
	TooFewItems:     "{field}は最低{limit}個の要素が必要です",
	TooManyItems:    "{field}は最大{limit}個までの要素が許可されています",
	InvalidEnum:     "{field}は次のいずれかである必要があります: {values}",
	UnionNoMatch:    "{field}は許可されているスキーマのいずれにも一致しません",
	UnionNotOne:     "{field}は許可されたスキーマのうちちょうど1つと一致する必要があります",
	ItemsType:       "{field}のすべての要素は{expected}である必要があります",
	ItemsTooSmall:   "{field}の要素は{limit}以上である必要があります",
	ItemsTooBig:     "{field}の要素は{limit}以下である必要があります",
	FormatEmail:     "{field}は有効なメールアドレス形式ではありません",
	FormatURI:       "{field}は有効なURI形式ではありません",
	FormatDate:      "{field}は有効な日付形式ではありません",
	FormatDateTime:  "{field}は有効な日時形式ではありません",
	FormatIPv4:      "{field}は有効なIPv4アドレスではありません",
	FormatIPv6:      "{field}は有効なIPv6アドレスではありません",
	KindString:      "文字列",
	KindInteger:     "整数",
	KindNumber:      "数値",
	KindBoolean:     "真偽値",
	KindArray:       "配列",
	KindObject:      "Hash",
	KindAny:         "正しい型",
	DocFields:       "{type} クラスの型定義:",
	DocOr:           " または ",
	DocArray:        "配列",
	DocObject:       "オブジェクト",
	DocOneOf:        "oneOf パターン",
	DocAny:          "any",
	DiagNotObject:   "JSONスキーマの型がobjectではありません",
	DiagMissingDef:  "指定された定義「{name}」がJSONスキーマに存在しません",
	DiagInvalidDef:  "定義「{name}」を生成できません: {issues}",
	DiagNoDefs:      "定義名が指定されていません",
	DiagListEmpty:   "このスキーマには定義が含まれていません。",
	DiagListHeading: "利用可能な定義一覧:",
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct {
	lang string
	dict map[string]string
}

func (t dictTranslator) Lang() string { return t.lang }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := t.dict[code]
	if !ok {
		if msg, ok = english[code]; !ok {
			return code
		}
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// New returns the built-in Translator for lang ("en" or "ja"). Unknown
// languages fall back to English.
func New(lang string) Translator {
	if lang == "ja" {
		return dictTranslator{lang: "ja", dict: japanese}
	}
	return dictTranslator{lang: "en", dict: english}
}

// Supported reports whether lang has a built-in dictionary.
func Supported(lang string) bool { return lang == "en" || lang == "ja" }

// KindCode maps a JSON Schema type name to its noun message code.
func KindCode(kind string) string {
	switch kind {
	case "string":
		return KindString
	case "integer":
		return KindInteger
	case "number":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "array":
		return KindArray
	case "object":
		return KindObject
	}
	return KindAny
}

// FormatCode maps a JSON Schema format name to its message code. The second
// result is false for formats without a built-in check.
func FormatCode(format string) (string, bool) {
	switch format {
	case "email":
		return FormatEmail, true
	case "uri":
		return FormatURI, true
	case "date":
		return FormatDate, true
	case "date-time":
		return FormatDateTime, true
	case "ipv4":
		return FormatIPv4, true
	case "ipv6":
		return FormatIPv6, true
	}
	return "", false
}
