package prompts

// Template names used by ingestion and retrieval.
const (
	DomainAPS = "aps"

	CategoryIndexing  = "indexing"
	CategoryRetrieval = "retrieval"

	NameTOCDetection   = "toc_detection"
	NameStructureScan  = "structure_scan"
	NameNodeSummary    = "node_summary"
	NameRetrieveSystem = "retrieve_system"
	NameRetrieveQuery  = "retrieve_query"
	NameRetrieveBatch  = "retrieve_batch"
)

const tocDetectionTemplate = `You are given pages of a document. Each page is wrapped in <physical_index_N> tags giving its physical page number.

Find the table of contents if one exists, or infer the section structure from headings. Return a JSON list where each item has:
- "structure": dotted section number reflecting nesting (e.g. "1", "1.2", "2.1.3")
- "title": the section title
- "physical_index": the physical page number where the section starts
- "appear_start": "yes" if the title text verifiably appears at the top of that page, "no" otherwise

Return only the JSON list.`

const structureScanTemplate = `The pages below are one section of a larger document, wrapped in <physical_index_N> tags with their original physical page numbers.

Break this section into subsections. Return a JSON list where each item has "structure", "title", "physical_index", and "appear_start" ("yes"/"no"), using the original physical page numbers.

Return only the JSON list.`

const nodeSummaryTemplate = `Summarize the following document section in at most three sentences. State what the section covers and any key facts (dates, diagnoses, providers, values). Do not editorialize.

Section title: {{title}}

Text:
{{text}}`

const retrieveSystemTemplate = `You answer questions about a medical document using its section index. The index lists each section's node_id, title, page range, and summary. You never see full page text; choose sections whose summaries indicate they contain the answer.`

const retrieveQueryTemplate = `Question: {{query}}

Select up to {{top_k}} sections most likely to contain the answer. Respond with JSON: {"node_list": ["<node_id>", ...], "reasoning": "<one sentence>"}.`

const retrieveBatchTemplate = `The following questions all belong to the category "{{category}}" ({{category_description}}):
{{questions}}

Select up to {{top_k}} sections most likely to contain answers for this category. Respond with JSON: {"node_list": ["<node_id>", ...], "reasoning": "<one sentence>"}.`

// DefaultRegistry returns a registry preloaded with the built-in templates.
// All built-ins are registered under full wildcards so any resolution
// context falls back to them.
func DefaultRegistry() *Registry {
	src := NewMemorySource()
	wildcard := func(category, name string) Key {
		return Key{
			Domain:     DomainAPS,
			Category:   category,
			Name:       name,
			LOB:        Wildcard,
			Department: Wildcard,
			UseCase:    Wildcard,
			Process:    Wildcard,
		}
	}

	src.Register(wildcard(CategoryIndexing, NameTOCDetection), tocDetectionTemplate)
	src.Register(wildcard(CategoryIndexing, NameStructureScan), structureScanTemplate)
	src.Register(wildcard(CategoryIndexing, NameNodeSummary), nodeSummaryTemplate)
	src.Register(wildcard(CategoryRetrieval, NameRetrieveSystem), retrieveSystemTemplate)
	src.Register(wildcard(CategoryRetrieval, NameRetrieveQuery), retrieveQueryTemplate)
	src.Register(wildcard(CategoryRetrieval, NameRetrieveBatch), retrieveBatchTemplate)

	return NewRegistry(src)
}
