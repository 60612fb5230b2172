package mcpserver

// ContentLayoutContract describes how documents are laid out on disk so LLM
// consumers can address them with the category/slug tools.
const ContentLayoutContract = `# Content Layout

The content root holds one directory per category. Each category directory
holds Markdown documents:

` + "```" + `text
<root>/
  NoSQL/
    graph_databases.md      -> category "NoSQL", slug "graph_databases"
    key_value_stores.md
  Relational/
    normal_forms.md
  Images/                   -> asset folder, never a category
    er_diagram.png
` + "```" + `

## Rules

1. Only the first directory level forms categories; nested folders are ignored.
2. A document is any file ending in ` + "`" + `.md` + "`" + `. Its slug is the file name without
   the extension.
3. The display title is the slug with every underscore replaced by a space.
4. Category and slug are single path elements: no ` + "`" + `/` + "`" + `, ` + "`" + `\` + "`" + ` or ` + "`" + `..` + "`" + `.
5. Images are referenced from documents as ` + "`" + `/content/Images/<file>` + "`" + `.
6. Content is read-only. There are no tools to create or edit documents.
`
