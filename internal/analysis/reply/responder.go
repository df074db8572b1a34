// Package reply selects a canned reply for a message that passed screening.
package reply

import (
	"strings"

	"github.com/samber/lo"
)

// Reply is the rendered response and the template that produced it.
type Reply struct {
	Template TemplateID `json:"template"`
	Language string     `json:"language,omitempty"`
	Content  string     `json:"content"`
}

// Responder dispatches text through an ordered route table.
type Responder struct {
	routes    []Route
	templates TemplateSet
}

// NewResponder builds a responder. Missing templates fall back to the defaults.
func NewResponder(routes []Route, templates TemplateSet) *Responder {
	merged := DefaultTemplates()
	for id, body := range templates {
		merged[id] = body
	}
	return &Responder{
		routes:    append([]Route(nil), routes...),
		templates: merged,
	}
}

// Default returns a responder with the built-in routes and templates.
func Default() *Responder {
	return NewResponder(DefaultRoutes(), nil)
}

// Select returns the template the text routes to.
func (r *Responder) Select(text string) TemplateID {
	msg := strings.ToLower(text)
	route, ok := lo.Find(r.routes, func(route Route) bool {
		return lo.SomeBy(route.Keywords, func(keyword string) bool {
			return strings.Contains(msg, keyword)
		})
	})
	if !ok {
		return TemplateDefault
	}
	return route.Template
}

// Respond renders the reply for text. The same text always yields the same reply.
func (r *Responder) Respond(text string) Reply {
	id := r.Select(text)
	if id != TemplateTechnical {
		return Reply{Template: id, Content: r.templates[id]}
	}

	lang := DetectLanguage(text)
	fence, snippet := "javascript", javascriptSnippet
	if lang == "python" {
		fence, snippet = "python", pythonSnippet
	}

	content := strings.NewReplacer(
		"{{LANGUAGE}}", strings.ToUpper(lang),
		"{{language}}", lang,
		"{{fence}}", fence,
		"{{snippet}}", snippet,
	).Replace(r.templates[id])

	return Reply{Template: id, Language: lang, Content: content}
}

// DetectLanguage returns the first known language named in text, or "programming".
func DetectLanguage(text string) string {
	msg := strings.ToLower(text)
	lang, ok := lo.Find(languages, func(lang string) bool {
		return strings.Contains(msg, lang)
	})
	if !ok {
		return fallbackLanguage
	}
	return lang
}
