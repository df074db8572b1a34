package reply

// TemplateID names one of the canned replies.
type TemplateID string

const (
	TemplateTechnical TemplateID = "technical"
	TemplateSpiritual TemplateID = "spiritual"
	TemplateSupport   TemplateID = "support"
	TemplateDefault   TemplateID = "default"
)

// Route maps a keyword set to a template. A route matches when the
// lower-cased text contains any of its keywords.
type Route struct {
	Template TemplateID
	Keywords []string
}

// DefaultRoutes returns the dispatch table in priority order.
// Text that matches no route gets TemplateDefault.
func DefaultRoutes() []Route {
	return []Route{
		{
			Template: TemplateTechnical,
			Keywords: []string{"python", "code", "programming", "javascript", "react", "nodejs", "api"},
		},
		{
			Template: TemplateSpiritual,
			Keywords: []string{"spiritual", "meditation", "wisdom"},
		},
		{
			Template: TemplateSupport,
			Keywords: []string{"help", "problem", "stuck"},
		},
	}
}

// languages are probed in order to fill the technical template.
var languages = []string{"python", "javascript", "react", "nodejs", "php", "laravel", "mysql", "api", "css", "html"}

const fallbackLanguage = "programming"
