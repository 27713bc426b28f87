package diagram

import (
	"maps"
	"slices"
)

// Style is a declarative set of properties and classes applied to an
// element by the rendering collaborator.
type Style struct {
	properties map[string]string
	classes    []string
}

// Set assigns a property. An empty value removes it.
func (s *Style) Set(key, value string) {
	if value == "" {
		delete(s.properties, key)
		return
	}
	if s.properties == nil {
		s.properties = make(map[string]string)
	}
	s.properties[key] = value
}

// Get returns a property value.
func (s *Style) Get(key string) string { return s.properties[key] }

// Properties returns a copy of all properties.
func (s *Style) Properties() map[string]string { return maps.Clone(s.properties) }

// AddClass adds a class if it is not already present.
func (s *Style) AddClass(class string) {
	if !s.HasClass(class) {
		s.classes = append(s.classes, class)
	}
}

// RemoveClass removes a class.
func (s *Style) RemoveClass(class string) {
	s.classes = slices.DeleteFunc(s.classes, func(c string) bool { return c == class })
}

// HasClass reports whether the class is present.
func (s *Style) HasClass(class string) bool { return slices.Contains(s.classes, class) }

// Classes returns the classes in insertion order.
func (s *Style) Classes() []string { return slices.Clone(s.classes) }
