// Package notes holds the helper texts the application page shows next to
// name and signature fields, per language.
package notes

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Kind selects which helper note is wanted.
type Kind string

const (
	// KindSpelling asks for uppercase letters, correct spacing and no typos.
	KindSpelling Kind = "spelling"
	// KindHandwriting says the name and signature must be written by hand.
	KindHandwriting Kind = "handwriting"
)

// ErrUnknownKind is returned for a kind with no table.
var ErrUnknownKind = errors.New("unknown note kind")

// Note is one localized helper text.
type Note struct {
	Kind Kind   `json:"kind"`
	Lang string `json:"lang"`
	Text string `json:"text"`
}

type entry struct {
	tag  language.Tag
	text string
}

// The first entry of each table is the fallback.
var tables = map[Kind][]entry{
	KindSpelling: {
		{language.Korean, "※대문자로작성/띄워쓰기 확인/오타 유의 해주시길바랍니다."},
		{language.English, "※ Please use UPPERCASE, check spacing, and watch for typos."},
		{language.Vietnamese, "※ Vui lòng viết HOA, kiểm tra khoảng cách và tránh lỗi chính tả."},
		{language.Thai, "※ โปรดใช้ตัวพิมพ์ใหญ่ ตรวจสอบการเว้นวรรค และระวังการพิมพ์ผิด"},
		{language.Khmer, "※ សូមប្រើអក្សរធំ ពិនិត្យការរំលងវាក្យ និងប្រយ័ត្នកំហុសវាយ"},
	},
	KindHandwriting: {
		{language.Korean, "※ 성함 과 사인은 필히 자필로 작성해주셔야합니다."},
		{language.English, "※ Your name and signature must be handwritten."},
		{language.Vietnamese, "※ Họ tên và chữ ký phải viết tay."},
		{language.Thai, "※ กรุณากรอกชื่อและลายเซ็นด้วยลายมือ"},
		{language.Khmer, "※ ឈ្មោះ និងហត្ថលេខា ត្រូវសរសេរដោយដៃ។"},
		{language.Chinese, "※ 姓名和签名必须手写。"},
		{language.Russian, "※ Имя и подпись должны быть написаны от руки."},
	},
}

// Language chips on the page use country codes.
var chipCodes = map[string]string{
	"kr": "ko",
	"us": "en",
	"vn": "vi",
	"kh": "km",
	"cn": "zh",
}

// Kinds lists the available note kinds.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(tables))
	for k := range tables {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Lookup returns the note of the given kind for the first language that
// has one. Languages may be chip codes (KR, US, VN, TH, KH), BCP 47 tags or
// Accept-Language values. With no match the Korean note is returned.
func Lookup(kind Kind, langs ...string) (Note, error) {
	entries, ok := tables[kind]
	if !ok {
		return Note{}, ErrUnknownKind
	}

	tags := make([]language.Tag, len(entries))
	for i, e := range entries {
		tags[i] = e.tag
	}
	matcher := language.NewMatcher(tags)

	for _, lang := range langs {
		for _, want := range parseTags(lang) {
			_, idx, conf := matcher.Match(want)
			if conf == language.No {
				continue
			}
			return newNote(kind, entries[idx]), nil
		}
	}
	return newNote(kind, entries[0]), nil
}

// All returns every note kind for one language.
func All(langs ...string) []Note {
	out := make([]Note, 0, len(tables))
	for _, kind := range Kinds() {
		if n, err := Lookup(kind, langs...); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func newNote(kind Kind, e entry) Note {
	base, _ := e.tag.Base()
	return Note{Kind: kind, Lang: base.String(), Text: e.text}
}

func parseTags(lang string) []language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return nil
	}
	if code, ok := chipCodes[strings.ToLower(lang)]; ok {
		lang = code
	}
	if strings.ContainsAny(lang, ",;") {
		tags, _, err := language.ParseAcceptLanguage(lang)
		if err != nil {
			return nil
		}
		return tags
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil
	}
	return []language.Tag{tag}
}
