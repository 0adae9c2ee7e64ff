package mcpserver

// SyntaxContract describes how tasks, worklogs and tags are written in the
// vault and how list queries are expressed.
const SyntaxContract = `# Taskparser Syntax

## Tasks

Every checklist item is a task. ` + "`" + `- [ ]` + "`" + ` is open, ` + "`" + `- [x]` + "`" + ` is done.
Checklist items nested inside a task belong to that task.

## Worklogs

A list item starting with ` + "`" + `WL:<hours>h ` + "`" + ` is a worklog, e.g.
` + "`" + `- WL:2.5h Reviewed PR #ticket(123)` + "`" + `. Hours take one or two digits with an
optional one or two digit fraction. A worklog nested in a task inherits the task's tags.

## Tags

Tags are name/value pairs. Sources, lowest precedence first:

1. ` + "`" + `.taskparser.yaml` + "`" + ` in any ancestor folder: ` + "`" + `tags: {name: value}` + "`" + `;
   ` + "`" + `ignore: true` + "`" + ` skips the folder.
2. A date in the file name (` + "`" + `20240305` + "`" + ` or ` + "`" + `2024-03-05` + "`" + `) sets ` + "`" + `date` + "`" + `.
3. YAML front-matter.
4. Headings: ` + "`" + `# Sprint #sprint(12)` + "`" + ` tags everything until the next heading of
   the same or a higher level. A ` + "```" + `tags fenced block adds YAML tags to the section.
5. Inline: ` + "`" + `#name(value)` + "`" + ` or ` + "`" + `#name` + "`" + ` (value "true"). Values cannot contain
   ` + "`" + `,` + "`" + ` or ` + "`" + `)` + "`" + `. Inline tags are removed from the item text.

Reserved tags set by the parser: ` + "`" + `file` + "`" + `, ` + "`" + `line` + "`" + `, ` + "`" + `checked` + "`" + `, ` + "`" + `hours` + "`" + `,
` + "`" + `text` + "`" + `, ` + "`" + `date` + "`" + `.

## Filter expressions

Comma-separated ` + "`" + `tag(operator reference)` + "`" + ` clauses, all of which must match.
Operators: ` + "`" + `=` + "`" + ` ` + "`" + `!=` + "`" + ` ` + "`" + `<` + "`" + ` ` + "`" + `>` + "`" + ` ` + "`" + `<=` + "`" + ` ` + "`" + `>=` + "`" + ` (string comparison),
` + "`" + `^=` + "`" + ` prefix, ` + "`" + `$=` + "`" + ` suffix, ` + "`" + `*=` + "`" + ` case-insensitive glob with ` + "`" + `*` + "`" + ` and ` + "`" + `?` + "`" + `,
` + "`" + `is null` + "`" + ` / ` + "`" + `not null` + "`" + ` for absent or empty tags. A clause on a missing tag
fails unless it uses is/not.

Example: ` + "`" + `checked(=false),date(>=20240301),owner(is null)` + "`" + `

## Sort expressions

Comma-separated ` + "`" + `tag(asc)` + "`" + ` or ` + "`" + `tag(desc)` + "`" + ` clauses. The first clause is the
primary key; empty values always sort last; ties keep file order.
`
