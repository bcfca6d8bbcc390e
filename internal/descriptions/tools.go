package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Document Tools
	FormGenerateDescription = `Fill the subscription application template and return the finished PDF.

**When to use:** A subscriber's details are collected and the signed-ready application form is needed.

**Why it's useful:** Accepts any of the historical field spellings (Korean labels, camelCase, snake_case), derives plan pricing, the application date and the autopay block, then stamps everything onto the carrier template.

**Examples:**
• New line: {"fields": {"가입자명": "HONG GILDONG", "plan": "wel5", "joinType": "new", "hope_number": "1234"}}
• Number port-in paid by card: {"fields": {"custName": "NGUYEN VAN A", "join_type": "port", "prevCarrier": "SKT", "cardNumber": "1234-5678-9012-3456", "cardExpYear": "2028", "cardExpMonth": "7"}}
• Print preview: {"fields": {...}, "mode": "print"}

**Common workflows:**
1. Check pricing: form_plans → pick a code → form_generate with plan
2. Debug a submission: form_normalize → fix the fields → form_generate

**Best practices:** Values are drawn as given, so send names in uppercase. Fields the mapping does not place are ignored.`

	FormNormalizeDescription = `Show a submission exactly as the renderer will see it, without producing a PDF.

**When to use:** A generated form is missing a value or shows the wrong autopay details.

**Why it's useful:** Returns the canonical record after alias resolution and every derivation, with the resolved payment method and join type.

**Examples:**
• Which payment wins: {"fields": {"bank_name": "KB", "card_number": "1234"}} (card wins unless payment_preference is bank)
• Alias check: {"fields": {"예금주": "KIM"}} → account_holder

**Best practices:** Run this before form_generate when a field seems to vanish; gated groups are cleared here.`

	// Catalog Tools
	FormPlansDescription = `List the rate plans the form knows, with the amounts it will print.

**When to use:** Need a valid plan code or want to confirm the price breakdown.

**Examples:**
• "Which plan codes exist?" → wel5, wel3, wel1
• "What does wel3 bill per month?"

**Best practices:** Plan codes are case-insensitive; the printed amounts always come from this catalog, never from the submission.`

	FormNotesDescription = `Get the localized helper notes shown next to the name and signature boxes.

**When to use:** Preparing instructions for a subscriber in their own language.

**Examples:**
• {"lang": "vi"} → every note in Vietnamese
• {"lang": "KH", "kind": "handwriting"} → the handwriting note in Khmer

**Best practices:** lang accepts chip codes (KR, US, VN, TH, KH, CN), BCP 47 tags or an Accept-Language value. Unknown languages fall back to Korean.`

	// Diagnostic Tools
	FormInspectDescription = `Validate the template and show where every mapping entry lands.

**When to use:** After changing the template or the mapping file, or when a value is drawn in the wrong place.

**Why it's useful:** Cross-checks the template with two PDF parsers, reports the page sizes, the fonts in use and the resolved point of every placement, including the ones that will be skipped and why.

**Best practices:** Coordinates are PDF points with a bottom-left origin.`

	FormServerInfoDescription = `Get server information, the loaded assets and the available tools.

**When to use:** First call in a session, or to check which template and mapping the server uses.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"form_generate":    FormGenerateDescription,
	"form_normalize":   FormNormalizeDescription,
	"form_plans":       FormPlansDescription,
	"form_notes":       FormNotesDescription,
	"form_inspect":     FormInspectDescription,
	"form_server_info": FormServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the available tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
