package adapter

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StripCodeFence unwraps fixed code the service returned inside a fenced
// markdown block (a habit of LLM backends). When the text is exactly one
// fenced block, its body is returned; anything else comes back unchanged.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return content
	}

	source := []byte(trimmed)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		body   string
		fences int
		others int
	)

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() == ast.KindDocument {
			return ast.WalkContinue, nil
		}

		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			others++
			return ast.WalkSkipChildren, nil
		}

		fences++

		var buf bytes.Buffer

		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(source))
		}

		body = buf.String()

		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return content
	}

	if fences != 1 || others != 0 {
		return content
	}

	return body
}
