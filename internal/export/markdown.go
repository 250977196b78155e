package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// RenderMarkdown converts article markdown to an HTML fragment
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
	Quote
	Code
)

// Block is one run of plain text laid out by the PDF writer
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// Blocks flattens article markdown into plain text blocks
func Blocks(src string) ([]Block, error) {
	fragment, err := RenderMarkdown(src)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered markdown: %w", err)
	}

	var blocks []Block
	add := func(kind BlockKind, level int, text string) {
		if text = collapse(text); text != "" {
			blocks = append(blocks, Block{Kind: kind, Level: level, Text: text})
		}
	}

	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		switch tag := goquery.NodeName(sel); tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			add(Heading, int(tag[1]-'0'), sel.Text())
		case "ul", "ol":
			sel.Find("li").Each(func(_ int, li *goquery.Selection) {
				add(ListItem, 0, li.Text())
			})
		case "blockquote":
			add(Quote, 0, sel.Text())
		case "pre":
			text := strings.TrimRight(sel.Text(), "\n")
			if text != "" {
				blocks = append(blocks, Block{Kind: Code, Text: text})
			}
		case "table":
			sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				var cells []string
				tr.Children().Each(func(_ int, cell *goquery.Selection) {
					cells = append(cells, collapse(cell.Text()))
				})
				add(Paragraph, 0, strings.Join(cells, " | "))
			})
		case "hr":
		default:
			add(Paragraph, 0, sel.Text())
		}
	})
	return blocks, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
