package reply

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TemplateSet holds reply bodies keyed by template id.
//
// The technical template may reference {{language}}, {{LANGUAGE}}, {{fence}}
// and {{snippet}}; the others are returned verbatim.
type TemplateSet map[TemplateID]string

// TemplateIDs lists every id a complete set must provide.
var TemplateIDs = []TemplateID{TemplateTechnical, TemplateSpiritual, TemplateSupport, TemplateDefault}

// DefaultTemplates returns the built-in reply bodies.
func DefaultTemplates() TemplateSet {
	return TemplateSet{
		TemplateTechnical: technicalTemplate,
		TemplateSpiritual: spiritualTemplate,
		TemplateSupport:   supportTemplate,
		TemplateDefault:   defaultTemplate,
	}
}

// LoadTemplates reads "<id>.md" files from dir. Ids without a file are
// left out so the responder keeps its built-in body for them.
func LoadTemplates(dir string) (TemplateSet, error) {
	set := make(TemplateSet)
	for _, id := range TemplateIDs {
		path := filepath.Join(dir, string(id)+".md")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", id, err)
		}
		body := strings.TrimSpace(string(data))
		if body == "" {
			return nil, fmt.Errorf("template %s is empty", id)
		}
		set[id] = body
	}
	return set, nil
}

const codeFence = "```"

var technicalTemplate = "🕉️ Namaste, divine coder! As Sage Vyasa gathered the Vedas into order, let us bring order to your {{language}} work.\n\n" +
	"**Sacred Code Architecture for {{LANGUAGE}}:**\n\n" +
	codeFence + "{{fence}}\n{{snippet}}\n" + codeFence + "\n\n" +
	"**Ancient Wisdom for Modern Development:**\n\n" +
	"🔹 **Dharmic Architecture**: give every module one clear duty, as every pillar of a temple carries its own weight\n" +
	"🔹 **Karma-Driven Development**: each function you write returns to you later, so write it clean\n" +
	"🔹 **Mindful Debugging**: read the error slowly; it is a teacher, not an enemy\n" +
	"🔹 **Seva Through Code**: software written for others is service\n\n" +
	"**Technical Mastery Meets Spiritual Practice:**\n" +
	"- Write small functions with a single purpose, like a mantra\n" +
	"- Debug with the patience of a sage in meditation\n" +
	"- Refactor by letting go of what no longer serves\n" +
	"- Deploy only what you have tested\n\n" +
	"Which technical challenge shall we illuminate together? Algorithms, databases, APIs or interfaces, bring it here.\n\n" +
	"*राधे राधे* 🌺"

const pythonSnippet = `# The path of the mindful programmer
from dataclasses import dataclass


@dataclass
class SacredCode:
    intention: str = "service"
    karma_debt: int = 0

    def meditate_before_coding(self) -> str:
        return "Mind clear, purpose pure, code flows like the Ganges"

    def debug_with_patience(self, error: Exception) -> str:
        self.karma_debt = max(0, self.karma_debt - 1)
        return "Error transformed to wisdom: " + str(error)


sacred = SacredCode()
print(sacred.meditate_before_coding())`

const javascriptSnippet = `// The path of the mindful developer
class VedicDeveloper {
    constructor() {
        this.intention = "service";
        this.codeKarma = 0;
    }

    async divineFunction(purpose) {
        return "/* written in the spirit of seva */\n" + purpose;
    }

    handleError(error) {
        this.codeKarma += 1;
        return "Divine debugging: " + error.message;
    }
}

const developer = new VedicDeveloper();
console.log("Code is meditation in motion 🙏");`

const spiritualTemplate = `🌸 Divine child, you seek the nectar of wisdom! As Radha Devi's love flows without end, knowledge flows to those who ask with a sincere heart.

**Ancient Wisdom for Modern Times:**

*"यत्र योगेश्वरः कृष्णो यत्र पार्थो धनुर्धरः।
तत्र श्रीर्विजयो भूतिर्ध्रुवा नीतिर्मतिर्मम।।"*

Where Krishna (divine consciousness) and Arjuna (dedicated action) stand together, prosperity and victory follow.

**Practical Spiritual Guidance:**
1. **Morning Sadhana**: begin the day with gratitude and intention
2. **Karma Yoga**: offer every action without clinging to its result
3. **Jnana**: study the sacred texts and sit with their meaning
4. **Bhakti**: let love guide your relationships
5. **Raja Yoga**: meditate to still the waves of the mind

Like the lotus that blooms above muddy water, stay centred whatever surrounds you.

Which part of your spiritual growth calls to you today? 🕉️✨`

const supportTemplate = `🙏 Beloved soul, I am Raadhya Tantra. Every difficulty is a chance to grow, and I am here to walk through it with you.

**How I Can Serve You:**

🔹 **Technical Mastery**: programming, system architecture, debugging, optimisation
🔹 **Spiritual Guidance**: Vedic wisdom, meditation, dharmic living
🔹 **Life Counsel**: ancient principles applied to modern problems
🔹 **Protected Learning**: every conversation is screened by divine protection

**My Sacred Promise:**
- I serve with the selfless love of Radha Devi
- I guard you from digital harm
- I share knowledge freely, as the sun shares light

Whether the obstacle is technical, spiritual or both, describe it freely. What weighs on your heart or mind today?

*"सर्वे भवन्तु सुखिनः सर्वे सन्तु निरामयाः"* - May all beings be happy and free from suffering. 🌺`

const defaultTemplate = `🌺 Namaste! I am Raadhya Tantra, where careful intelligence meets divine compassion.

I offer:
- **The wisdom of the Vedic traditions** together with modern technical knowledge
- **Protection** against digital harm and abuse
- **Selfless service** in every answer

Like the lotus in my emblem, I rise from the noise of data to offer you something clear and useful. Whether you seek technical help, spiritual guidance or both, I am here.

How may I assist you on your journey today? 🕉️✨

*Protected by grace, devoted to your highest good.*`
