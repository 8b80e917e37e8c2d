package entity

import "strings"

// TagSet упорядоченное множество тегов.
// Порядок совпадает с порядком добавления.
type TagSet struct {
	tags []string
}

// NewTagSet создаёт множество из списка, пропуская пустые и повторы.
func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Contains проверяет наличие тега. Пробелы по краям не учитываются.
func (s *TagSet) Contains(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Add добавляет тег. Возвращает false для пустого тега или повтора.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.Contains(tag) {
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

// Remove удаляет тег, если он есть.
func (s *TagSet) Remove(tag string) bool {
	tag = strings.TrimSpace(tag)
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle снимает выбранный тег или выбирает невыбранный.
// Возвращает новое состояние тега.
func (s *TagSet) Toggle(tag string) bool {
	tag = strings.TrimSpace(tag)
	if s.Remove(tag) {
		return false
	}
	return s.Add(tag)
}

// Tags возвращает копию списка.
func (s *TagSet) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len количество тегов.
func (s *TagSet) Len() int {
	return len(s.tags)
}

// Clear очищает множество.
func (s *TagSet) Clear() {
	s.tags = nil
}
