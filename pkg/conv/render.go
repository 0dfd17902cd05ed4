package conv

import (
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const parserExtensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock

// render turns markdown into HTML. A new parser is needed per call, they
// keep state between documents.
func render(md []byte, opts html.RendererOptions) []byte {
	p := parser.NewWithExtensions(parserExtensions)
	return markdown.Render(p.Parse(md), html.NewRenderer(opts))
}

// flatBlocksHook renders headings as bold lines and list items as bullets,
// for targets that have no block elements.
func flatBlocksHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch node.(type) {
	case *ast.Heading:
		if entering {
			io.WriteString(w, "<b>")
		} else {
			io.WriteString(w, "</b>\n")
		}
		return ast.GoToNext, true
	case *ast.ListItem:
		if entering {
			io.WriteString(w, "• ")
		} else {
			io.WriteString(w, "\n")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}
