package pipeline

// Oracle prompt templates. Each stage asks for a single JSON document
// matching its payload schema; contextual material travels in the request
// context map, not in the template.

const extractionPrompt = `Analyze the test file below and extract every test block.
For each block report: test_name, features_tested, classification
(user-facing | internal | mixed), use_case, complexity (simple | moderate |
complex), potential (high | medium | low), and key_concepts.
Return JSON: {"test_blocks": [...]}`

const distillationPrompt = `From the analyzed test blocks below, plan standalone usage examples
worth showing to users. Merge blocks that demonstrate the same feature.
For each example report: title, summary, complexity (simple | moderate |
complex), potential (high | medium | low), classification, and source_tests
(file + test_name pairs).
Return JSON: {"examples": [...]}`

const generationPrompt = `Write a complete, runnable example project for the plan below.
Include a README.md explaining what the example demonstrates and how to run
it. Base the code on the referenced source tests; do not invent APIs.
Return JSON: {"files": {"<relative path>": "<content>", ...}}`

const refinementPrompt = `The example below failed validation. Fix every listed issue by
rewriting the affected files. Leave files without issues untouched.
Return JSON: {"files": {"<relative path>": "<new content>", ...},
"resolved": ["<issue type>", ...]}`
