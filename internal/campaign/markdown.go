package campaign

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// MarkdownParser parses Markdown campaign files.
//
// A campaign document carries optional YAML frontmatter (name,
// stop_on_failure) and one "## Case: TypeName" heading per entry. A fenced
// yaml block under a heading configures the entry:
//
//	## Case: LidDrivenCavity
//
//	```yaml
//	params:
//	  reynolds: 100
//	sweep:
//	  scheme: [upwind, quick]
//	```
//
// Prose between headings is ignored, so campaigns double as readable run
// documentation.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// campaignHeader represents the optional campaign frontmatter
type campaignHeader struct {
	Name          string `yaml:"name"`
	StopOnFailure bool   `yaml:"stop_on_failure"`
}

// entryBlock represents the fenced yaml configuration under a case heading
type entryBlock struct {
	Params map[string]any `yaml:"params"`
	Sweep  yaml.Node      `yaml:"sweep"`
}

var caseHeadingRegex = regexp.MustCompile(`^Case:\s+(.+)$`)

func (p *MarkdownParser) Parse(r io.Reader) (*Campaign, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	camp := &Campaign{}
	body, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var head campaignHeader
		if err := yaml.Unmarshal(frontmatter, &head); err != nil {
			return nil, fmt.Errorf("parse frontmatter: %w", err)
		}
		camp.Name = head.Name
		camp.StopOnFailure = head.StopOnFailure
	}

	doc := p.markdown.Parser().Parse(gtext.NewReader(body))

	var current *Entry
	var configured bool
	flush := func() {
		if current != nil {
			camp.Entries = append(camp.Entries, *current)
		}
		current = nil
		configured = false
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 {
				return ast.WalkSkipChildren, nil
			}
			// A level 2 heading either starts a new entry or ends the
			// current one.
			flush()
			headingText := extractText(node, body)
			if matches := caseHeadingRegex.FindStringSubmatch(headingText); len(matches) == 2 {
				current = &Entry{CaseType: strings.TrimSpace(matches[1])}
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			if current == nil {
				return ast.WalkSkipChildren, nil
			}
			// Only fences labelled yaml configure an entry. Anything else
			// is prose and stays ignored.
			lang := string(node.Language(body))
			if lang != "yaml" && lang != "yml" {
				return ast.WalkSkipChildren, nil
			}
			if configured {
				return ast.WalkStop, fmt.Errorf("case %q has more than one configuration block", current.CaseType)
			}

			var cfg entryBlock
			if err := yaml.Unmarshal(blockText(node, body), &cfg); err != nil {
				return ast.WalkStop, fmt.Errorf("case %q: decode configuration block: %w", current.CaseType, err)
			}
			axes, err := decodeSweep(&cfg.Sweep)
			if err != nil {
				return ast.WalkStop, fmt.Errorf("case %q: %w", current.CaseType, err)
			}
			current.Params = cfg.Params
			current.Sweep = axes
			configured = true
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	flush()

	if len(camp.Entries) == 0 {
		return nil, fmt.Errorf("campaign defines no cases")
	}

	return camp, nil
}

// extractText extracts plain text from an AST node's direct children.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if text, ok := c.(*ast.Text); ok {
			buf.Write(text.Segment.Value(source))
		}
	}
	return buf.String()
}

// blockText returns the raw source text inside a fenced code block.
func blockText(node *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// extractFrontmatter splits YAML frontmatter off markdown content.
// Returns the content without frontmatter and the frontmatter bytes,
// or the original content and nil when there is no frontmatter.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}
