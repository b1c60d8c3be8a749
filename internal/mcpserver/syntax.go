package mcpserver

// QuerySyntaxGuide describes how the search pipeline interprets queries.
// Exposed as an MCP resource so LLM consumers can write effective queries.
const QuerySyntaxGuide = `# Leit Query Syntax Guide

Queries are plain text. There are no operators to learn; the pipeline does
the work. A query must be at least 2 characters after trimming whitespace.

## How results are ranked

Results come from four passes, in order. A document appears at most once,
claimed by the first pass that matches it.

1. **Title match.** The query equals the document's file name (without
   ` + "`.md`" + `) or appears in it as a whole word. ` + "`budget`" + ` finds
   ` + "`Budget.md`" + ` and ` + "`Budget Report.md`" + `.
2. **Content match.** The query appears in the document body as a whole
   word or phrase. Multi-word queries must appear with the words adjacent.
3. **Related-title match.** A term related to the query appears in the file
   name. ` + "`angry`" + ` finds ` + "`Feeling Furious.md`" + ` through the
   built-in vocabulary of synonyms and emotion words.
4. **Keyword scoring.** The query is broken into keywords and expanded with
   related vocabulary; every remaining document is scored against file
   names, headers, body text, and table cells, normalized for length.

At most 50 results are returned.

## Writing good queries

- Short keyword queries work best: ` + "`quarterly budget`" + ` rather than
  ` + "`can you please find the notes about the quarterly budget`" + `.
  Question and command phrasing is understood, but filler words are
  discarded anyway.
- Emotion and concept words are expanded: ` + "`anger`" + ` also matches
  ` + "`furious`" + `, ` + "`mad`" + `, ` + "`pissed-off`" + `.
- Matching is case-insensitive. Word order matters only for exact phrase
  hits (pass 2).

## What is searchable

Only indexed documents are searched. Documents under excluded folders or
carrying excluded tags are absent from the index; use vault_status to see
the active exclusion rules, and reindex_vault after changing them.
`
