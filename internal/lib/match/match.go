// Package match реализует подбор участников по пересечению навыков.
//
// Intersects выполняет простой фильтр по пересечению множеств.
// Jaccard вычисляет коэффициент сходства Жаккара для ранжированного подбора.
package match

import "strings"

// normalize приводит набор навыков к множеству в нижнем регистре.
// Пустые строки отбрасываются.
func normalize(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// Intersects сообщает, пересекаются ли два набора навыков.
// Сравнение нечувствительно к регистру. Пустой запрос ничего не находит.
func Intersects(query, skills []string) bool {
	q := normalize(query)
	if len(q) == 0 {
		return false
	}
	for _, s := range skills {
		if _, ok := q[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}

// Jaccard возвращает коэффициент сходства Жаккара двух наборов навыков:
// |пересечение| / |объединение|, в диапазоне [0, 1].
// Для двух пустых наборов возвращает 0.
func Jaccard(a, b []string) float64 {
	setA := normalize(a)
	setB := normalize(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	var intersection int
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
