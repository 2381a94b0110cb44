package mcpserver

// PostFormatContract describes the Markdown post format that LLM consumers
// should follow when drafting posts.
const PostFormatContract = `# Presswork Post Format Contract

Every post is a Markdown file with a YAML frontmatter block.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # REQUIRED
subtitle: Part title                # OPTIONAL – series parts use it
date: 2024-03-15                    # REQUIRED – YYYY-MM-DD
visibility: draft                   # REQUIRED – public|unlisted|private|draft|archived
tags:                               # OPTIONAL – dictionary tags, first one is the category
  - css
  - react
tags_extra:                         # OPTIONAL – free-text keywords
  - styled-components
intro: One paragraph summary.       # OPTIONAL – used in listings and feeds
cover: ./cover.png                  # OPTIONAL – relative to the post directory
cover_width: 1200                   # OPTIONAL
cover_height: 630                   # OPTIONAL
---

Body text in standard Markdown (GitHub flavored).
` + "```" + `

## Visibility

| value | listed | direct link | feed |
|---|---|---|---|
| public | yes | yes | yes |
| unlisted | no | yes | no |
| private | no | no | no |
| draft | development only | development only | no |
| archived | archive page only | yes | no |

An unknown or missing visibility makes the post private.

## Rules

1. **Frontmatter is mandatory** and must be the first thing in the file.
2. **File paths** end with ` + "`" + `.md` + "`" + `. ` + "`" + `a/b.md` + "`" + ` and ` + "`" + `a/b/index.md` + "`" + ` both publish at ` + "`" + `/blog/a/b` + "`" + `.
3. **Tags** use dictionary identifiers (call ` + "`" + `list_tags` + "`" + `). Unknown tags are kept but
   never get a tag page.
4. **New posts are drafts.** The ` + "`" + `create_draft` + "`" + ` tool only accepts ` + "`" + `visibility: draft` + "`" + `.
5. **Encoding** is UTF-8 with a trailing newline.

## Series

A directory holding ` + "`" + `series.yaml` + "`" + ` groups its posts into a series:

` + "```" + `yaml
title: Scalable CSS
description: How CSS evolved to scale.
last_published_part: 2
parts:
  - { id: 0, path: "" }
  - { id: 1, path: history, subtitle: "History" }
  - { id: 2, path: methodologies }
` + "```" + `

Parts after ` + "`" + `last_published_part` + "`" + ` are not linked; the first one is shown as "coming soon".
`
