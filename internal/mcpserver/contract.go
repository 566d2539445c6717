package mcpserver

// SyntaxContract describes the exact Kramdown emitted for each construct so
// that callers can predict, and produce, converted documents.
const SyntaxContract = `# kramify Output Syntax

kramify rewrites three Obsidian constructs. Everything else in a document,
including the YAML frontmatter header, is preserved byte for byte.

## Images

Input: ` + "`![name](target)`" + ` or ` + "`![name|N](target)`" + `

- MkDocs: ` + "`![name](target){: style=\"width:Npx\" }`" + `
- Jekyll: ` + "`![name](target){: width=\"N\" .shadow }`" + `

N defaults to the configured image width (640). The ` + "`|N`" + ` suffix never
appears in the output. Images are converted whatever their target.

## Links

Input: ` + "`[text](https://host/path)`" + `; only targets starting with http are converted.

- MkDocs: ` + "`[text](url){: target=\"_blank\" rel=\"noopener noreferrer\" style=\"text-decoration:underline\" }`" + `
- Jekyll: ` + "`[text](url){: target=\"_blank\" rel=\"noopener noreferrer\" }`" + `

A ` + "`|`" + ` inside the link text is escaped as ` + "`\\|`" + `. A quoted title is kept.

## Callouts (Jekyll only)

Input:

` + "```" + `markdown
> [!hint] Optional title
> body line
` + "```" + `

Output with a title:

` + "```" + `markdown
> **Optional title**  
> body line
{: .prompt-tip }
` + "```" + `

Without a title the bold line is omitted. Severities:

| prompt class | callout types |
|---|---|
| ` + "`.prompt-tip`" + ` | tip, hint, important |
| ` + "`.prompt-info`" + ` | info, note, and any unknown type |
| ` + "`.prompt-warning`" + ` | warning, caution, attention |
| ` + "`.prompt-danger`" + ` | danger, error |

The body runs until an empty line or a line starting with ` + "`<!--`" + `.
Callouts are left untouched for MkDocs.

## Idempotence

A construct followed directly by a ` + "`{: ... }`" + ` attribute block is already
converted and is never modified again. Running the conversion twice yields
the same document.

## Index

In the index document (` + "`Main Index.md`" + ` by default) every line whose first
link is titled "Read & Watch List" or "Languages" is removed.
`
