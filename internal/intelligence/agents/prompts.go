package agents

import (
	"fmt"
	"strings"
)

// Prompt builders for the discovery flows.  Each prompt demands a markdown
// table with a fixed header set so the parser downstream gets a predictable
// shape, and embeds the evidence rules the validator later re-checks.

// BuyerTableColumns is the header set strict and relaxed buyer prompts demand.
var BuyerTableColumns = []string{
	"Company", "Product Name", "Form", "Strength",
	"Verification Source", "Confidence (%)", "URL", "Additional Info",
}

// ManufacturerTableColumns is the header set the manufacturer prompt demands.
var ManufacturerTableColumns = []string{
	"Manufacturer", "Country", "USDMF", "CEP", "Source Name", "Source URL",
}

func tableHeader(cols []string) string {
	return "| " + strings.Join(cols, " | ") + " |"
}

// BuildStrictBuyerPrompt asks for finished-dosage-form buyers of apiName with
// hard evidence requirements.  Callers pair it with a 90 minimum confidence
// validation policy.
func BuildStrictBuyerPrompt(apiName, country string, knownCompanies []string) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identify pharmaceutical companies in %s that manufacture or market "+
		"finished dosage forms (tablets, capsules, injections) containing %s as the "+
		"active ingredient.\n\n", countryOrGlobal(country), apiName)
	sb.WriteString("STRICT RULES:\n")
	sb.WriteString("- Only include companies you can verify from a concrete source " +
		"(product catalog, regulatory approval list, prescribing information).\n")
	sb.WriteString("- Report confidence as a percentage; only include rows where your " +
		"confidence is 90% or higher.\n")
	fmt.Fprintf(&sb, "- Every row's product details must mention %s explicitly.\n", apiName)
	sb.WriteString("- Exclude API manufacturers, bulk drug suppliers, importers, " +
		"distributors and trading companies.\n")
	sb.WriteString("- Every row must carry a working http(s) URL for verification.\n")
	sb.WriteString("- Quality over quantity: an empty table is better than an unverified row.\n\n")
	appendKnown(&sb, knownCompanies)
	sb.WriteString("Respond with a single markdown table using exactly these columns:\n")
	sb.WriteString(tableHeader(BuyerTableColumns) + "\n")

	return []Message{
		{Role: RoleSystem, Content: "You are a pharmaceutical market intelligence analyst. " +
			"You never invent companies or URLs."},
		{Role: RoleUser, Content: sb.String()},
	}
}

// BuildRelaxedBuyerPrompt is the wider-net variant used when the strict pass
// returns nothing.  Callers pair it with a 50 minimum confidence policy.
func BuildRelaxedBuyerPrompt(apiName, country string, knownCompanies []string) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "List pharmaceutical companies in %s that plausibly produce or sell "+
		"finished dosage forms containing %s.\n\n", countryOrGlobal(country), apiName)
	sb.WriteString("Include likely candidates even when verification is partial, but:\n")
	sb.WriteString("- Report your honest confidence as a percentage for every row.\n")
	fmt.Fprintf(&sb, "- Product details must still mention %s.\n", apiName)
	sb.WriteString("- Still exclude pure API manufacturers, importers and distributors.\n")
	sb.WriteString("- Provide an http(s) URL per row.\n\n")
	appendKnown(&sb, knownCompanies)
	sb.WriteString("Respond with a single markdown table using exactly these columns:\n")
	sb.WriteString(tableHeader(BuyerTableColumns) + "\n")

	return []Message{
		{Role: RoleSystem, Content: "You are a pharmaceutical market intelligence analyst."},
		{Role: RoleUser, Content: sb.String()},
	}
}

// BuildManufacturerPrompt asks for API manufacturers with regulatory-filing
// flags, the shape the manufacturer discovery flow persists.
func BuildManufacturerPrompt(apiName, country string, knownManufacturers []string) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identify manufacturers of the active pharmaceutical ingredient %s", apiName)
	if country != "" {
		fmt.Fprintf(&sb, " based in %s", country)
	}
	sb.WriteString(".\n\nFor each manufacturer report whether a US DMF filing and a CEP " +
		"certificate exist (Yes/No/Unknown), and name the source you used " +
		"(regulator database, company site).\n\n")
	appendKnown(&sb, knownManufacturers)
	sb.WriteString("Respond with a single markdown table using exactly these columns:\n")
	sb.WriteString(tableHeader(ManufacturerTableColumns) + "\n")

	return []Message{
		{Role: RoleSystem, Content: "You are a pharmaceutical regulatory intelligence analyst. " +
			"You only report manufacturers you can trace to a source."},
		{Role: RoleUser, Content: sb.String()},
	}
}

// BuildSynthesisAnalysisPrompt asks an agent to summarize the synthesis
// routes found in patent text already classified as synthesis-relevant.
func BuildSynthesisAnalysisPrompt(apiName, patentText string) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The following patent text concerns the synthesis of %s. ", apiName)
	sb.WriteString("Summarize the synthetic route: key intermediates, reagents, " +
		"reaction conditions, and any reported yields. Flag anything suggesting " +
		"the route is laboratory-scale only.\n\n")
	sb.WriteString(patentText)

	return []Message{
		{Role: RoleSystem, Content: "You are a process chemist analyzing patent literature."},
		{Role: RoleUser, Content: sb.String()},
	}
}

func countryOrGlobal(country string) string {
	if strings.TrimSpace(country) == "" {
		return "any country"
	}
	return country
}

func appendKnown(sb *strings.Builder, known []string) {
	if len(known) == 0 {
		return
	}
	sb.WriteString("Already known, do not repeat: " + strings.Join(known, ", ") + ".\n\n")
}

//Personal.AI order the ending
