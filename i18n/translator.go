package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for issue codes.
// data provides optional values to embed in the message; a "{key}"
// placeholder in the template is replaced by data["key"].
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		"missing_version":              "schema does not specify a version; it must be the first declaration",
		"invalid_version":              "invalid version declaration",
		"unsupported_version":          "unsupported schema version {version}",
		"duplicate_version":            "version is already declared",
		"invalid_import":               "import statement must be followed by the package name to import",
		"import_after_type":            "imports must be declared before any type",
		"duplicate_import":             "package {name} is already imported",
		"invalid_type_header":          "invalid type declaration",
		"invalid_type_name":            "invalid type name",
		"invalid_type_modifier":        "invalid type modifier",
		"field_outside_type":           "before specifying a field, a type must be created",
		"unexpected_close":             "before closing a type, a new one must be created",
		"invalid_enum_member":          "enum fields should only specify a name and an index",
		"enum_member_with_type":        "enum fields cannot declare value types",
		"missing_field_name":           "fields must specify a name",
		"invalid_field_name":           "invalid field name",
		"missing_field_type":           "field must declare a value type",
		"missing_field_index":          "field should specify an index",
		"invalid_field_index":          "field index must be a non-negative integer",
		"metadata_before_default":      "default values must be specified before metadata",
		"invalid_metadata":             "invalid characters after metadata",
		"unknown_type":                 "unknown type",
		"invalid_type_arity":           "invalid number of type arguments",
		"nested_container":             "lists and maps cannot contain other lists or maps",
		"invalid_type_expression":      "invalid type expression",
		"invalid_default_value":        "invalid default value",
		"default_value_overflow":       "default value overflows the field type",
		"illegal_default_for_binary":   "binary fields cannot declare default values",
		"illegal_default_for_struct":   "only enum and union members can be used as default values",
		"default_value_type_mismatch":  "default value references a different type",
		"invalid_metadata_entry":       "metadata entries should contain exactly two values",
		"invalid_metadata_key":         "metadata keys can be only of type string",
		"invalid_metadata_value":       "metadata values can be only of string, boolean, int or float types",
		"duplicate_metadata_key":       "metadata key is already defined",
		"unknown_import":               "imported package does not exist",
		"unknown_member":               "value is not present in type",
		"unimported_package":           "package is not imported",
		"duplicate_index":              "type field index already defined",
		"duplicate_field_name":         "field name already defined",
		"duplicate_package":            "package is already defined",
		"illegal_nullable":             "enums and unions cannot declare nullable fields",
		"unterminated_type":            "type is not closed",
		"empty_enum":                   "enum declares no members",
		"enum_does_not_start_at_zero":  "first enum field should have 0-index",
		"non_consecutive_enum_indices": "enum field indexes should be consecutive",
		"source_read":                  "cannot read source",
		"internal":                     "internal error",
	},
	"ja": {
		"missing_version":              "バージョンが指定されていません",
		"invalid_version":              "バージョン宣言が不正です",
		"unsupported_version":          "未対応のバージョンです: {version}",
		"duplicate_version":            "バージョンが重複しています",
		"invalid_import":               "インポート文が不正です",
		"import_after_type":            "インポートは型定義より前に宣言してください",
		"duplicate_import":             "パッケージ {name} は既にインポートされています",
		"invalid_type_header":          "型宣言が不正です",
		"invalid_type_name":            "型名が不正です",
		"invalid_type_modifier":        "型修飾子が不正です",
		"field_outside_type":           "フィールドは型の中で宣言してください",
		"unexpected_close":             "閉じる型がありません",
		"invalid_enum_member":          "列挙型のフィールドは名前とインデックスのみ指定できます",
		"enum_member_with_type":        "列挙型のフィールドは値の型を宣言できません",
		"missing_field_name":           "フィールド名がありません",
		"invalid_field_name":           "フィールド名が不正です",
		"missing_field_type":           "フィールドの型がありません",
		"missing_field_index":          "フィールドのインデックスがありません",
		"invalid_field_index":          "フィールドのインデックスが不正です",
		"metadata_before_default":      "デフォルト値はメタデータより前に指定してください",
		"invalid_metadata":             "メタデータの後に不正な文字があります",
		"unknown_type":                 "未知の型です",
		"invalid_type_arity":           "型引数の数が不正です",
		"nested_container":             "リストとマップは入れ子にできません",
		"invalid_type_expression":      "型式が不正です",
		"invalid_default_value":        "デフォルト値が不正です",
		"default_value_overflow":       "デフォルト値が型の範囲を超えています",
		"illegal_default_for_binary":   "binary 型はデフォルト値を持てません",
		"illegal_default_for_struct":   "デフォルト値には列挙型か共用体の値のみ使用できます",
		"default_value_type_mismatch":  "デフォルト値の型が一致しません",
		"invalid_metadata_entry":       "メタデータの要素はキーと値の2つで構成してください",
		"invalid_metadata_key":         "メタデータのキーは文字列のみです",
		"invalid_metadata_value":       "メタデータの値が不正です",
		"duplicate_metadata_key":       "メタデータのキーが重複しています",
		"unknown_import":               "インポートされたパッケージが存在しません",
		"unknown_member":               "型に存在しない値です",
		"unimported_package":           "パッケージがインポートされていません",
		"duplicate_index":              "フィールドのインデックスが重複しています",
		"duplicate_field_name":         "フィールド名が重複しています",
		"duplicate_package":            "パッケージが重複しています",
		"illegal_nullable":             "列挙型と共用体は null 許容フィールドを宣言できません",
		"unterminated_type":            "型が閉じられていません",
		"empty_enum":                   "列挙型に値がありません",
		"enum_does_not_start_at_zero":  "列挙型の最初のインデックスは 0 にしてください",
		"non_consecutive_enum_indices": "列挙型のインデックスは連続させてください",
		"source_read":                  "ソースを読み込めません",
		"internal":                     "内部エラー",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogs[t.lang][code]
	if !ok {
		if msg, ok = catalogs["en"][code]; !ok {
			return code
		}
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
